package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmmarket/internal/domain"
)

type stubCartRepo struct {
	items    map[string]*domain.CartItem
	products map[string]*domain.Product
	removed  []string
}

func newStubCartRepo(products map[string]*domain.Product) *stubCartRepo {
	return &stubCartRepo{items: map[string]*domain.CartItem{}, products: products}
}

func (s *stubCartRepo) GetForUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, it := range s.items {
		if it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *stubCartRepo) GetByID(_ context.Context, itemID, userID string) (*domain.CartItem, error) {
	it, ok := s.items[itemID]
	if !ok || it.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (s *stubCartRepo) GetByIDs(_ context.Context, userID string, ids []string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, id := range ids {
		if it, ok := s.items[id]; ok && it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *stubCartRepo) AddOrMerge(_ context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	for _, it := range s.items {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity += quantity
			copied := *it
			return &copied, nil
		}
	}
	it := &domain.CartItem{ID: "item-" + productID, UserID: userID, ProductID: productID, Quantity: quantity}
	if p, ok := s.products[productID]; ok {
		it.Product = *p
	}
	s.items[it.ID] = it
	copied := *it
	return &copied, nil
}

func (s *stubCartRepo) UpdateQuantity(_ context.Context, itemID, userID string, quantity int) (*domain.CartItem, error) {
	it, ok := s.items[itemID]
	if !ok || it.UserID != userID {
		return nil, domain.ErrNotFound
	}
	it.Quantity = quantity
	copied := *it
	return &copied, nil
}

func (s *stubCartRepo) Remove(_ context.Context, itemID, userID string) error {
	it, ok := s.items[itemID]
	if !ok || it.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.items, itemID)
	s.removed = append(s.removed, itemID)
	return nil
}

func (s *stubCartRepo) RemoveByIDs(_ context.Context, userID string, ids []string) error {
	for _, id := range ids {
		delete(s.items, id)
	}
	return nil
}

func (s *stubCartRepo) GetAll(_ context.Context) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out, nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func newService() (*Service, *stubCartRepo, *stubProductRepo) {
	catalog := map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "Sukuma Wiki", Price: 50, QuantityAvailable: 10, VendorID: "vendor-1"},
	}
	carts := newStubCartRepo(catalog)
	products := &stubProductRepo{products: catalog}
	return New(carts, products), carts, products
}

func TestAddMergesExistingLine(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	first, err := svc.Add(ctx, "user-1", "prod-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Quantity)

	merged, err := svc.Add(ctx, "user-1", "prod-1", 4)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 7, merged.Quantity)
}

func TestAddAccountsForExistingQuantity(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", "prod-1", 6)
	require.NoError(t, err)

	// 6 already carted + 5 more exceeds the 10 in stock.
	_, err = svc.Add(ctx, "user-1", "prod-1", 5)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 11, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Add(context.Background(), "user-1", "prod-1", 0)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestAddRejectsOwnProduct(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Add(context.Background(), "vendor-1", "prod-1", 1)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, carts, _ := newService()
	ctx := context.Background()

	item, err := svc.Add(ctx, "user-1", "prod-1", 2)
	require.NoError(t, err)

	got, err := svc.SetQuantity(ctx, "user-1", item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, carts.removed, item.ID)
}

func TestSetQuantityChecksStock(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	item, err := svc.Add(ctx, "user-1", "prod-1", 2)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, "user-1", item.ID, 11)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)

	got, err := svc.SetQuantity(ctx, "user-1", item.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
}

func TestGetComputesTotal(t *testing.T) {
	svc, _, products := newService()
	ctx := context.Background()
	products.products["prod-2"] = &domain.Product{ID: "prod-2", Price: 33.335, QuantityAvailable: 5, VendorID: "vendor-2"}

	_, err := svc.Add(ctx, "user-1", "prod-1", 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-1", "prod-2", 3)
	require.NoError(t, err)

	cart, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	// 2x50 + round(3x33.335) = 100 + 100.01
	assert.Equal(t, 200.01, cart.Total)
}
