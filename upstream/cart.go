package upstream

import (
	"context"
	"fmt"

	"storefront-svc/models"
)

func (c *Client) GetCart(ctx context.Context, token string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := c.getJSON(ctx, "/cart", token, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) AddCartItem(ctx context.Context, token string, req models.AddCartItemRequest) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := c.postJSON(ctx, "/cart", token, req, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token string, productID int, req models.UpdateCartItemRequest) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := c.putJSON(ctx, fmt.Sprintf("/cart/%d", productID), token, req, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, productID int) error {
	return c.delete(ctx, fmt.Sprintf("/cart/%d", productID), token, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.delete(ctx, "/cart", token, nil)
}
