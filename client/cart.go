package client

import (
	"context"
	"net/http"
	"sync"

	"farmmarket/internal/domain"
)

// CartStore mirrors the server cart. Every mutation goes to the server
// first; the local view only changes once the server has confirmed, so a
// failed call leaves the cart exactly as it was.
type CartStore struct {
	client *Client

	mu    sync.RWMutex
	items []domain.CartItem
	total float64
}

func (c *Client) Cart() *CartStore {
	return &CartStore{client: c}
}

type cartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

// Refresh replaces the local view with the server's cart.
func (s *CartStore) Refresh(ctx context.Context) error {
	var resp cartResponse
	if err := s.client.do(ctx, http.MethodGet, "/api/cart", nil, &resp, ""); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = resp.Items
	s.total = resp.Total
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the local cart view.
func (s *CartStore) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the server-computed cart total as of the last refresh.
func (s *CartStore) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Add puts quantity of a product in the cart. The server merges repeat
// adds of the same product into one line. Quantity and stock are checked
// against the local view first so obvious mistakes never leave the client;
// the server remains the authority.
func (s *CartStore) Add(ctx context.Context, productID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("quantity must be at least 1")
	}
	if line, ok := s.cachedLine(productID); ok {
		if stock := line.Product.QuantityAvailable; stock > 0 && line.Quantity+quantity > stock {
			return nil, &domain.StockError{
				ProductID: productID,
				Requested: line.Quantity + quantity,
				Available: stock,
			}
		}
	}
	body := map[string]interface{}{"product_id": productID, "quantity": quantity}
	var item domain.CartItem
	if err := s.client.do(ctx, http.MethodPost, "/api/cart/items", body, &item, ""); err != nil {
		return nil, err
	}
	return &item, s.Refresh(ctx)
}

// SetQuantity changes a line's quantity; zero or less removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity > 0 {
		if line, ok := s.cachedItem(itemID); ok {
			if stock := line.Product.QuantityAvailable; stock > 0 && quantity > stock {
				return &domain.StockError{
					ProductID: line.ProductID,
					Requested: quantity,
					Available: stock,
				}
			}
		}
	}
	body := map[string]int{"quantity": quantity}
	if err := s.client.do(ctx, http.MethodPut, "/api/cart/items/"+itemID, body, nil, ""); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *CartStore) cachedLine(productID string) (domain.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

func (s *CartStore) cachedItem(itemID string) (domain.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

// Remove deletes a line. On failure the local view is untouched.
func (s *CartStore) Remove(ctx context.Context, itemID string) error {
	if err := s.client.do(ctx, http.MethodDelete, "/api/cart/items/"+itemID, nil, nil, ""); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
