package catalog

import (
	"context"
	"strings"

	"farmmarket/internal/domain"
	productrepo "farmmarket/internal/repository/product"
)

type productRepo interface {
	Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error)
	Update(ctx context.Context, id, vendorID string, in productrepo.CreateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id, vendorID string) error
}

type vendorRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type reportRepo interface {
	OpenCount(ctx context.Context, vendorID string) (int, error)
}

type reviewRepo interface {
	AverageRating(ctx context.Context, productID string) (avg float64, count int, err error)
}

type Service struct {
	products productRepo
	vendors  vendorRepo
	reports  reportRepo
	reviews  reviewRepo
}

func New(products productrepo.Repository, vendors vendorRepo, reports reportRepo, reviews reviewRepo) *Service {
	return &Service{products: products, vendors: vendors, reports: reports, reviews: reviews}
}

type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Image       *string `json:"image,omitempty"`
}

// ProductDetail is a listing augmented with its review aggregate.
type ProductDetail struct {
	domain.Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func (s *Service) Create(ctx context.Context, vendorID string, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	if err := s.checkVendorCanPublish(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, productrepo.CreateProductInput{
		Name:        strings.TrimSpace(in.Name),
		Price:       domain.Round2(in.Price),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Quantity:    in.Quantity,
		Image:       in.Image,
		VendorID:    vendorID,
	})
}

func (s *Service) Update(ctx context.Context, id, vendorID string, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	return s.products.Update(ctx, id, vendorID, productrepo.CreateProductInput{
		Name:        strings.TrimSpace(in.Name),
		Price:       domain.Round2(in.Price),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Quantity:    in.Quantity,
		Image:       in.Image,
		VendorID:    vendorID,
	})
}

func (s *Service) Delete(ctx context.Context, id, vendorID string) error {
	return s.products.Delete(ctx, id, vendorID)
}

func (s *Service) Get(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.reviews.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: *p, AverageRating: domain.Round2(avg), ReviewCount: count}, nil
}

func (s *Service) List(ctx context.Context, location string) ([]domain.Product, error) {
	return s.products.List(ctx, productrepo.ListFilter{Location: strings.TrimSpace(location)})
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Product, error) {
	return s.products.List(ctx, productrepo.ListFilter{VendorID: vendorID})
}

func (s *Service) checkVendorCanPublish(ctx context.Context, vendorID string) error {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if v.Role != domain.RoleVendor || v.Banned || !v.Verified {
		return domain.ErrForbidden
	}
	n, err := s.reports.OpenCount(ctx, vendorID)
	if err != nil {
		return err
	}
	if n >= domain.SuspensionThreshold {
		return domain.ErrForbidden
	}
	return nil
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Validationf("product name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return domain.Validationf("category is required")
	}
	if in.Price <= 0 {
		return domain.Validationf("price must be positive")
	}
	if in.Quantity < 0 {
		return domain.Validationf("quantity cannot be negative")
	}
	return nil
}
