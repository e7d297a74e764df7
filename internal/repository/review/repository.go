package review

import (
	"context"

	"farmmarket/internal/domain"
)

type CreateReviewInput struct {
	CustomerID string
	ProductID  string
	VendorID   string
	Rating     int
	Comment    *string
}

type Repository interface {
	Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Review, error)
	AverageRating(ctx context.Context, productID string) (avg float64, count int, err error)
}
