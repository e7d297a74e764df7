package client

import (
	"context"
	"net/http"
	"net/url"

	"farmmarket/internal/domain"
)

// ListProducts browses the catalog, optionally filtered by vendor
// location. No session is required.
func (c *Client) ListProducts(ctx context.Context, location string) ([]domain.Product, error) {
	path := "/api/products"
	if location != "" {
		path += "?location=" + url.QueryEscape(location)
	}
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// ProductDetail is a catalog listing with its review aggregate.
type ProductDetail struct {
	domain.Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func (c *Client) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	var detail ProductDetail
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, nil, &detail, ""); err != nil {
		return nil, err
	}
	return &detail, nil
}
