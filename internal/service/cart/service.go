package cart

import (
	"context"

	"farmmarket/internal/domain"
	cartrepo "farmmarket/internal/repository/cart"
)

type cartRepo interface {
	GetForUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetByID(ctx context.Context, itemID, userID string) (*domain.CartItem, error)
	AddOrMerge(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID, userID string, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, itemID, userID string) error
	GetAll(ctx context.Context) ([]domain.CartItem, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartrepo.Repository, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// Cart is the user's cart with its server-computed total.
type Cart struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	items, err := s.repo.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return &Cart{Items: items, Total: domain.SumLines(items)}, nil
}

// Add puts quantity of a product in the cart, merging with any existing
// line. The merged quantity must still fit the available stock.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.VendorID == userID {
		return nil, domain.Validationf("vendors cannot buy their own products")
	}

	existing := 0
	items, err := s.repo.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			existing = it.Quantity
			break
		}
	}
	if existing+quantity > p.QuantityAvailable {
		return nil, &domain.StockError{
			ProductID: productID,
			Requested: existing + quantity,
			Available: p.QuantityAvailable,
		}
	}
	return s.repo.AddOrMerge(ctx, userID, productID, quantity)
}

// SetQuantity replaces the line quantity. Zero or less removes the line
// and returns nil.
func (s *Service) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		if err := s.repo.Remove(ctx, itemID, userID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.repo.GetByID(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > p.QuantityAvailable {
		return nil, &domain.StockError{
			ProductID: item.ProductID,
			Requested: quantity,
			Available: p.QuantityAvailable,
		}
	}
	return s.repo.UpdateQuantity(ctx, itemID, userID, quantity)
}

func (s *Service) Remove(ctx context.Context, userID, itemID string) error {
	return s.repo.Remove(ctx, itemID, userID)
}

// All lists every cart line on the platform. Admin only.
func (s *Service) All(ctx context.Context) ([]domain.CartItem, error) {
	return s.repo.GetAll(ctx)
}
