package order

import (
	"context"

	"go.uber.org/zap"

	"farmmarket/internal/domain"
	reportrepo "farmmarket/internal/repository/report"
)

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.ShippingOrder, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ShippingOrder, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.ShippingOrder, error)
	UpdateStatus(ctx context.Context, id, vendorID, status string, trackingNumber *string) error
	VerifyAndRelease(ctx context.Context, id, customerID string) (bool, error)
	MarkDisputed(ctx context.Context, id, customerID string) (*domain.ShippingOrder, error)
	VendorSales(ctx context.Context, vendorID string) (*domain.VendorSalesReport, error)
	CustomerPurchases(ctx context.Context, customerID string) (*domain.CustomerPurchaseReport, error)
}

type reportRepo interface {
	Create(ctx context.Context, in reportrepo.CreateReportInput) (*domain.VendorReport, error)
}

type Service struct {
	repo    orderRepo
	reports reportRepo
	logger  *zap.Logger
}

func New(repo orderRepo, reports reportRepo, logger *zap.Logger) *Service {
	return &Service{repo: repo, reports: reports, logger: logger}
}

// ListFor returns the orders visible to the caller: customers see their
// purchases, vendors their sales.
func (s *Service) ListFor(ctx context.Context, userID string, role domain.Role) ([]domain.ShippingOrder, error) {
	if role == domain.RoleVendor {
		return s.repo.ListByVendor(ctx, userID)
	}
	return s.repo.ListByCustomer(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*domain.ShippingOrder, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != userID && o.VendorID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

type UpdateStatusInput struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

func (s *Service) UpdateStatus(ctx context.Context, id, vendorID string, in UpdateStatusInput) (*domain.ShippingOrder, error) {
	switch in.Status {
	case domain.ShippingPending, domain.ShippingShipped, domain.ShippingDelivered, domain.ShippingCancelled:
	default:
		return nil, domain.Validationf("invalid shipping status %q", in.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, vendorID, in.Status, in.TrackingNumber); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

type VerifyResult struct {
	Order           *domain.ShippingOrder `json:"order"`
	PaymentReleased bool                  `json:"payment_released"`
}

// VerifyDelivery records the customer's answer to the delivery prompt.
// "Received" releases the escrowed payment to the vendor exactly once;
// "not received" disputes the order and files a report against the
// vendor. Both outcomes are idempotent.
func (s *Service) VerifyDelivery(ctx context.Context, id, customerID string, received bool) (*VerifyResult, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	if o.ShippingStatus != domain.ShippingDelivered && o.ShippingStatus != domain.ShippingDisputed {
		return nil, domain.Validationf("order must be delivered before verification")
	}

	if !received {
		disputed, err := s.repo.MarkDisputed(ctx, id, customerID)
		if err != nil {
			return nil, err
		}
		if o.ShippingStatus != domain.ShippingDisputed {
			// First dispute files the report; repeats do not stack.
			desc := "customer reports the order was never received"
			if _, err := s.reports.Create(ctx, reportrepo.CreateReportInput{
				CustomerID:  customerID,
				VendorID:    o.VendorID,
				ProductID:   &o.ProductID,
				ReportType:  domain.ReportTypeDispute,
				Description: &desc,
			}); err != nil {
				return nil, err
			}
			s.logger.Info("delivery disputed",
				zap.String("order_id", id),
				zap.String("vendor_id", o.VendorID))
		}
		return &VerifyResult{Order: disputed, PaymentReleased: false}, nil
	}

	released, err := s.repo.VerifyAndRelease(ctx, id, customerID)
	if err != nil {
		return nil, err
	}
	if released {
		s.logger.Info("payment released to vendor",
			zap.String("order_id", id),
			zap.String("vendor_id", o.VendorID),
			zap.Float64("amount", o.TotalAmount))
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: updated, PaymentReleased: released}, nil
}

func (s *Service) VendorSales(ctx context.Context, vendorID string) (*domain.VendorSalesReport, error) {
	return s.repo.VendorSales(ctx, vendorID)
}

func (s *Service) CustomerPurchases(ctx context.Context, customerID string) (*domain.CustomerPurchaseReport, error) {
	return s.repo.CustomerPurchases(ctx, customerID)
}
