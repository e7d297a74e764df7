package payment

import (
	"context"

	"farmmarket/internal/domain"
)

type CreateTransactionInput struct {
	UserID            string
	CheckoutRequestID string
	MerchantRequestID string
	PhoneNumber       string
	Amount            float64
	CartItemIDs       []string
}

type SettlementOrder struct {
	ProductID   string
	VendorID    string
	Quantity    int
	TotalAmount float64
}

type SettleOrdersInput struct {
	CheckoutRequestID string
	UserID            string
	CartItemIDs       []string
	ShippingAddress   *string
	Orders            []SettlementOrder
}

type Repository interface {
	Create(ctx context.Context, in CreateTransactionInput) (*domain.PaymentTransaction, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PaymentTransaction, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentTransaction, error)
	// SetStatus moves a non-terminal transaction to status. A terminal
	// transaction is left untouched and ErrAlreadyExists is returned, so
	// re-delivered gateway callbacks cannot flip a settled payment.
	SetStatus(ctx context.Context, checkoutRequestID, status string, receiptNumber, transactionDate *string) error
	// SettleOrders claims orders_created and, in the same database
	// transaction, inserts the shipping orders, deducts product stock and
	// deletes the paid cart items. False means another caller already
	// settled the transaction. Any failure rolls the claim back so a
	// redelivered callback or polling retry can settle later.
	SettleOrders(ctx context.Context, in SettleOrdersInput) (bool, error)
}
