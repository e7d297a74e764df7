package cart

import (
	"context"

	"farmmarket/internal/domain"
)

type Repository interface {
	GetForUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetByID(ctx context.Context, itemID, userID string) (*domain.CartItem, error)
	// GetByIDs returns the caller's items among ids, in insertion order.
	GetByIDs(ctx context.Context, userID string, ids []string) ([]domain.CartItem, error)
	// AddOrMerge inserts a line for the product or adds quantity to the
	// existing one, and returns the authoritative item.
	AddOrMerge(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID, userID string, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, itemID, userID string) error
	// RemoveByIDs clears paid items after settlement.
	RemoveByIDs(ctx context.Context, userID string, ids []string) error
	GetAll(ctx context.Context) ([]domain.CartItem, error)
}
