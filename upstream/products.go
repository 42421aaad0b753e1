package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"storefront-svc/models"
)

type ProductQuery struct {
	Limit    int
	Featured bool
	Admin    bool
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.Admin {
		v.Set("admin", "true")
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, token string, q ProductQuery) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/products", token, q.values(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, token string, id int) (*models.Product, error) {
	var product models.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), token, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct forwards the admin's multipart form (fields plus an optional
// image file) unchanged.
func (c *Client) CreateProduct(ctx context.Context, token string, fields map[string]string, image *FileUpload) (*models.Product, error) {
	var product models.Product
	if err := c.sendMultipart(ctx, "POST", "/products", token, fields, image, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int, fields map[string]string, image *FileUpload) (*models.Product, error) {
	var product models.Product
	if err := c.sendMultipart(ctx, "PUT", fmt.Sprintf("/products/%d", id), token, fields, image, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int) error {
	return c.delete(ctx, fmt.Sprintf("/products/%d", id), token, nil)
}

func (c *Client) ListCatalogs(ctx context.Context, token string) ([]models.Catalog, error) {
	var catalogs []models.Catalog
	if err := c.getJSON(ctx, "/catalogs", token, nil, &catalogs); err != nil {
		return nil, err
	}
	return catalogs, nil
}

func (c *Client) CreateCatalog(ctx context.Context, token string, req models.CatalogRequest) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := c.postJSON(ctx, "/catalogs", token, req, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Client) UpdateCatalog(ctx context.Context, token string, id int, req models.CatalogRequest) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := c.putJSON(ctx, fmt.Sprintf("/catalogs/%d", id), token, req, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Client) DeleteCatalog(ctx context.Context, token string, id int) error {
	return c.delete(ctx, fmt.Sprintf("/catalogs/%d", id), token, nil)
}
