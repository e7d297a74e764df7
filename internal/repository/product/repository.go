package product

import (
	"context"

	"farmmarket/internal/domain"
)

// CreateProductInput carries the fields a vendor submits for a listing.
type CreateProductInput struct {
	Name        string
	Price       float64
	Category    string
	Description string
	Quantity    int
	Image       *string
	VendorID    string
}

// ListFilter narrows the catalog query. Zero value lists everything.
type ListFilter struct {
	VendorID string // only this vendor's products
	Location string // only products from vendors in this location
}

type Repository interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	// Update only touches rows owned by vendorID; ErrNotFound otherwise.
	Update(ctx context.Context, id, vendorID string, in CreateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id, vendorID string) error
}
