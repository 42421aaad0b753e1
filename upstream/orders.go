package upstream

import (
	"context"
	"fmt"
	"net/url"

	"storefront-svc/models"
)

type OrderFilter struct {
	StartDate     string
	EndDate       string
	PaymentStatus string
	OrderStatus   string
}

func (f OrderFilter) values() url.Values {
	v := url.Values{}
	if f.StartDate != "" {
		v.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		v.Set("endDate", f.EndDate)
	}
	if f.PaymentStatus != "" {
		v.Set("paymentStatus", f.PaymentStatus)
	}
	if f.OrderStatus != "" {
		v.Set("orderStatus", f.OrderStatus)
	}
	return v
}

func (c *Client) ListOrders(ctx context.Context, token string, f OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getJSON(ctx, "/orders", token, f.values(), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, id int) (*models.Order, error) {
	var order models.Order
	if err := c.getJSON(ctx, fmt.Sprintf("/orders/%d", id), token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder submits the staged checkout as one multipart request. The items
// array travels as a JSON string field; COD orders carry no proof file.
func (c *Client) CreateOrder(ctx context.Context, token string, fields map[string]string, proof *FileUpload) (*models.Order, error) {
	var order models.Order
	if err := c.sendMultipart(ctx, "POST", "/orders", token, fields, proof, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UploadProof(ctx context.Context, token string, id int, proof *FileUpload) (*models.Order, error) {
	var order models.Order
	if err := c.sendMultipart(ctx, "PUT", fmt.Sprintf("/orders/%d/upload-proof", id), token, nil, proof, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, token string, id int) (*models.Order, error) {
	var order models.Order
	if err := c.putJSON(ctx, fmt.Sprintf("/orders/%d/cancel", id), token, struct{}{}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) AdminUpdateOrder(ctx context.Context, token string, id int, req models.AdminOrderUpdateRequest) error {
	return c.putJSON(ctx, fmt.Sprintf("/orders/%d/admin/status", id), token, req, nil)
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", id), token, nil)
}
