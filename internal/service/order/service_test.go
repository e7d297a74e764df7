package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	reportrepo "farmmarket/internal/repository/report"
)

type stubOrderRepo struct {
	orders  map[string]*domain.ShippingOrder
	wallets map[string]float64
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.ShippingOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *stubOrderRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.ShippingOrder, error) {
	var out []domain.ShippingOrder
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListByVendor(_ context.Context, vendorID string) ([]domain.ShippingOrder, error) {
	var out []domain.ShippingOrder
	for _, o := range s.orders {
		if o.VendorID == vendorID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id, vendorID, status string, tracking *string) error {
	o, ok := s.orders[id]
	if !ok || o.VendorID != vendorID {
		return domain.ErrNotFound
	}
	o.ShippingStatus = status
	if tracking != nil {
		o.TrackingNumber = tracking
	}
	return nil
}

func (s *stubOrderRepo) VerifyAndRelease(_ context.Context, id, customerID string) (bool, error) {
	o, ok := s.orders[id]
	if !ok || o.CustomerID != customerID {
		return false, domain.ErrNotFound
	}
	if o.PaymentReleased {
		return false, nil
	}
	o.CustomerVerified = true
	o.PaymentReleased = true
	s.wallets[o.VendorID] += o.TotalAmount
	return true, nil
}

func (s *stubOrderRepo) MarkDisputed(_ context.Context, id, customerID string) (*domain.ShippingOrder, error) {
	o, ok := s.orders[id]
	if !ok || o.CustomerID != customerID || o.PaymentReleased {
		return nil, domain.ErrNotFound
	}
	o.ShippingStatus = domain.ShippingDisputed
	copied := *o
	return &copied, nil
}

func (s *stubOrderRepo) VendorSales(_ context.Context, _ string) (*domain.VendorSalesReport, error) {
	return &domain.VendorSalesReport{}, nil
}

func (s *stubOrderRepo) CustomerPurchases(_ context.Context, _ string) (*domain.CustomerPurchaseReport, error) {
	return &domain.CustomerPurchaseReport{}, nil
}

type stubReportRepo struct {
	filed []reportrepo.CreateReportInput
}

func (s *stubReportRepo) Create(_ context.Context, in reportrepo.CreateReportInput) (*domain.VendorReport, error) {
	s.filed = append(s.filed, in)
	return &domain.VendorReport{ID: "report-1", VendorID: in.VendorID, ReportType: in.ReportType}, nil
}

func fixture() (*Service, *stubOrderRepo, *stubReportRepo) {
	orders := &stubOrderRepo{
		orders: map[string]*domain.ShippingOrder{
			"order-1": {
				ID:             "order-1",
				CustomerID:     "customer-1",
				VendorID:       "vendor-1",
				ProductID:      "prod-1",
				TotalAmount:    200,
				ShippingStatus: domain.ShippingDelivered,
			},
		},
		wallets: map[string]float64{},
	}
	reports := &stubReportRepo{}
	return New(orders, reports, zap.NewNop()), orders, reports
}

func TestVerifyDeliveryReleasesPaymentOnce(t *testing.T) {
	svc, orders, _ := fixture()
	ctx := context.Background()

	result, err := svc.VerifyDelivery(ctx, "order-1", "customer-1", true)
	require.NoError(t, err)
	assert.True(t, result.PaymentReleased)
	assert.True(t, result.Order.CustomerVerified)
	assert.Equal(t, 200.0, orders.wallets["vendor-1"])

	// A retry must not credit the vendor again.
	result, err = svc.VerifyDelivery(ctx, "order-1", "customer-1", true)
	require.NoError(t, err)
	assert.False(t, result.PaymentReleased)
	assert.Equal(t, 200.0, orders.wallets["vendor-1"])
}

func TestVerifyDeliveryRequiresDeliveredStatus(t *testing.T) {
	svc, orders, _ := fixture()
	orders.orders["order-1"].ShippingStatus = domain.ShippingShipped

	_, err := svc.VerifyDelivery(context.Background(), "order-1", "customer-1", true)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestVerifyDeliveryNotReceivedFilesDispute(t *testing.T) {
	svc, orders, reports := fixture()
	ctx := context.Background()

	result, err := svc.VerifyDelivery(ctx, "order-1", "customer-1", false)
	require.NoError(t, err)
	assert.False(t, result.PaymentReleased)
	assert.Equal(t, domain.ShippingDisputed, result.Order.ShippingStatus)
	assert.Equal(t, 0.0, orders.wallets["vendor-1"])

	require.Len(t, reports.filed, 1)
	assert.Equal(t, domain.ReportTypeDispute, reports.filed[0].ReportType)
	assert.Equal(t, "vendor-1", reports.filed[0].VendorID)

	// Answering again does not stack a second report.
	_, err = svc.VerifyDelivery(ctx, "order-1", "customer-1", false)
	require.NoError(t, err)
	assert.Len(t, reports.filed, 1)
}

func TestVerifyDeliveryWrongCustomer(t *testing.T) {
	svc, _, _ := fixture()

	_, err := svc.VerifyDelivery(context.Background(), "order-1", "customer-2", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusValidatesStatus(t *testing.T) {
	svc, _, _ := fixture()

	_, err := svc.UpdateStatus(context.Background(), "order-1", "vendor-1", UpdateStatusInput{Status: "lost"})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	o, err := svc.UpdateStatus(context.Background(), "order-1", "vendor-1", UpdateStatusInput{Status: domain.ShippingShipped})
	require.NoError(t, err)
	assert.Equal(t, domain.ShippingShipped, o.ShippingStatus)
}

func TestListForRoleScoping(t *testing.T) {
	svc, _, _ := fixture()
	ctx := context.Background()

	asCustomer, err := svc.ListFor(ctx, "customer-1", domain.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, asCustomer, 1)

	asVendor, err := svc.ListFor(ctx, "vendor-1", domain.RoleVendor)
	require.NoError(t, err)
	assert.Len(t, asVendor, 1)

	other, err := svc.ListFor(ctx, "customer-2", domain.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, other)
}
