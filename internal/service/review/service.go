package review

import (
	"context"

	"farmmarket/internal/domain"
	reviewrepo "farmmarket/internal/repository/review"
)

type reviewRepo interface {
	Create(ctx context.Context, in reviewrepo.CreateReviewInput) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Review, error)
	AverageRating(ctx context.Context, productID string) (float64, int, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	HasDeliveredOrder(ctx context.Context, customerID, productID string) (bool, error)
}

type Service struct {
	repo     reviewRepo
	products productRepo
	orders   orderRepo
}

func New(repo reviewrepo.Repository, products productRepo, orders orderRepo) *Service {
	return &Service{repo: repo, products: products, orders: orders}
}

type CreateInput struct {
	ProductID string  `json:"product_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
}

// Create posts a review. Only customers with a delivered order for the
// product may review it, once.
func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.Validationf("rating must be between 1 and 5")
	}
	p, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	delivered, err := s.orders.HasDeliveredOrder(ctx, customerID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, domain.ErrForbidden
	}
	return s.repo.Create(ctx, reviewrepo.CreateReviewInput{
		CustomerID: customerID,
		ProductID:  in.ProductID,
		VendorID:   p.VendorID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	})
}

// ProductReviews is a review list with its aggregate.
type ProductReviews struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

func (s *Service) ForProduct(ctx context.Context, productID string) (*ProductReviews, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	avg, count, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{Reviews: reviews, AverageRating: domain.Round2(avg), ReviewCount: count}, nil
}

// Mine lists the reviews the caller has written.
func (s *Service) Mine(ctx context.Context, customerID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *Service) ForVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
