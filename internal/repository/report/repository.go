package report

import (
	"context"

	"farmmarket/internal/domain"
)

type CreateReportInput struct {
	CustomerID  string
	VendorID    string
	ProductID   *string
	ReportType  string
	Description *string
}

type Repository interface {
	Create(ctx context.Context, in CreateReportInput) (*domain.VendorReport, error)
	GetByID(ctx context.Context, id string) (*domain.VendorReport, error)
	ListAll(ctx context.Context) ([]domain.VendorReport, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorReport, error)
	// OpenCount counts unresolved reports against a vendor. Dismissed
	// reports do not count toward suspension.
	OpenCount(ctx context.Context, vendorID string) (int, error)
	Resolve(ctx context.Context, id, status string, adminNotes *string) (*domain.VendorReport, error)
}
