package order

import (
	"context"

	"farmmarket/internal/domain"
)

// Orders are inserted by payment settlement (repository/payment), which
// claims the transaction, creates the orders and deducts stock atomically.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.ShippingOrder, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ShippingOrder, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.ShippingOrder, error)
	// UpdateStatus only touches orders belonging to vendorID. Stamping
	// "delivered" also sets verification_requested_at.
	UpdateStatus(ctx context.Context, id, vendorID, status string, trackingNumber *string) error
	// VerifyAndRelease marks the order verified and credits the vendor
	// wallet in one transaction. Returns false without side effects when
	// payment was already released.
	VerifyAndRelease(ctx context.Context, id, customerID string) (released bool, err error)
	// MarkDisputed flags a delivered order the customer says never arrived.
	MarkDisputed(ctx context.Context, id, customerID string) (*domain.ShippingOrder, error)
	HasDeliveredOrder(ctx context.Context, customerID, productID string) (bool, error)

	VendorSales(ctx context.Context, vendorID string) (*domain.VendorSalesReport, error)
	CustomerPurchases(ctx context.Context, customerID string) (*domain.CustomerPurchaseReport, error)
}
