package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	"farmmarket/internal/mpesa"
	paymentrepo "farmmarket/internal/repository/payment"
)

type stubPaymentRepo struct {
	txns      map[string]*domain.PaymentTransaction
	settled   []paymentrepo.SettleOrdersInput
	settleErr error
}

func (s *stubPaymentRepo) GetByCheckoutRequestID(_ context.Context, id string) (*domain.PaymentTransaction, error) {
	t, ok := s.txns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *stubPaymentRepo) ListByUser(_ context.Context, userID string) ([]domain.PaymentTransaction, error) {
	var out []domain.PaymentTransaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *stubPaymentRepo) SetStatus(_ context.Context, id, status string, receipt, date *string) error {
	t, ok := s.txns[id]
	if !ok {
		return domain.ErrNotFound
	}
	if domain.PaymentTerminal(t.Status) {
		return domain.ErrAlreadyExists
	}
	t.Status = status
	t.MpesaReceiptNumber = receipt
	t.TransactionDate = date
	return nil
}

func (s *stubPaymentRepo) SettleOrders(_ context.Context, in paymentrepo.SettleOrdersInput) (bool, error) {
	if s.settleErr != nil {
		err := s.settleErr
		s.settleErr = nil
		return false, err
	}
	t, ok := s.txns[in.CheckoutRequestID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if t.OrdersCreated {
		return false, nil
	}
	t.OrdersCreated = true
	s.settled = append(s.settled, in)
	return true, nil
}

type stubCartRepo struct {
	items map[string]domain.CartItem
}

func (s *stubCartRepo) GetByIDs(_ context.Context, userID string, ids []string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, id := range ids {
		if it, ok := s.items[id]; ok && it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

type stubUserRepo struct{}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	loc := "Nairobi"
	return &domain.User{ID: id, Location: &loc}, nil
}

func successCallback(checkoutRequestID string) *mpesa.Callback {
	raw := `{
		"Body": {"stkCallback": {
			"CheckoutRequestID": "` + checkoutRequestID + `",
			"ResultCode": 0,
			"ResultDesc": "ok",
			"CallbackMetadata": {"Item": [
				{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
				{"Name": "TransactionDate", "Value": 20240101120000}
			]}
		}}
	}`
	var cb mpesa.Callback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		panic(err)
	}
	return &cb
}

func cancelCallback(checkoutRequestID string) *mpesa.Callback {
	raw := `{
		"Body": {"stkCallback": {
			"CheckoutRequestID": "` + checkoutRequestID + `",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user"
		}}
	}`
	var cb mpesa.Callback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		panic(err)
	}
	return &cb
}

func fixture() (*Service, *stubPaymentRepo) {
	payments := &stubPaymentRepo{txns: map[string]*domain.PaymentTransaction{
		"ws_CO_test": {
			ID:                "txn-1",
			UserID:            "user-1",
			CheckoutRequestID: "ws_CO_test",
			Amount:            250,
			Status:            domain.PaymentInitiated,
			CartItemIDs:       []string{"item-a", "item-b"},
		},
	}}
	carts := &stubCartRepo{items: map[string]domain.CartItem{
		"item-a": {ID: "item-a", UserID: "user-1", ProductID: "prod-a", Quantity: 2,
			Product: domain.Product{ID: "prod-a", Price: 100, VendorID: "vendor-1"}},
		"item-b": {ID: "item-b", UserID: "user-1", ProductID: "prod-b", Quantity: 1,
			Product: domain.Product{ID: "prod-b", Price: 50, VendorID: "vendor-2"}},
	}}
	svc := New(payments, carts, &stubUserRepo{}, zap.NewNop())
	return svc, payments
}

func TestCallbackSuccessCreatesOrders(t *testing.T) {
	svc, payments := fixture()
	ctx := context.Background()

	require.NoError(t, svc.HandleCallback(ctx, successCallback("ws_CO_test")))

	txn := payments.txns["ws_CO_test"]
	assert.Equal(t, domain.PaymentCompleted, txn.Status)
	require.NotNil(t, txn.MpesaReceiptNumber)
	assert.Equal(t, "NLJ7RT61SV", *txn.MpesaReceiptNumber)

	require.Len(t, payments.settled, 1)
	settlement := payments.settled[0]
	assert.Equal(t, "user-1", settlement.UserID)
	assert.ElementsMatch(t, []string{"item-a", "item-b"}, settlement.CartItemIDs)
	require.Len(t, settlement.Orders, 2)
	assert.Equal(t, 200.0, settlement.Orders[0].TotalAmount)
	assert.Equal(t, "vendor-1", settlement.Orders[0].VendorID)
	assert.Equal(t, 50.0, settlement.Orders[1].TotalAmount)
	assert.Equal(t, "vendor-2", settlement.Orders[1].VendorID)
}

func TestCallbackRedeliveryIsNoOp(t *testing.T) {
	svc, payments := fixture()
	ctx := context.Background()

	require.NoError(t, svc.HandleCallback(ctx, successCallback("ws_CO_test")))
	require.NoError(t, svc.HandleCallback(ctx, successCallback("ws_CO_test")))

	// Second delivery must not double the orders.
	assert.Len(t, payments.settled, 1)
}

func TestCallbackCancelled(t *testing.T) {
	svc, payments := fixture()

	require.NoError(t, svc.HandleCallback(context.Background(), cancelCallback("ws_CO_test")))

	assert.Equal(t, domain.PaymentCancelled, payments.txns["ws_CO_test"].Status)
	assert.Empty(t, payments.settled)
}

func TestProcessCompletedIdempotentWithCallback(t *testing.T) {
	svc, payments := fixture()
	ctx := context.Background()

	require.NoError(t, svc.HandleCallback(ctx, successCallback("ws_CO_test")))

	// A polling client that saw completion calls process-completed too.
	txn, err := svc.ProcessCompleted(ctx, "user-1", "ws_CO_test")
	require.NoError(t, err)
	assert.True(t, txn.OrdersCreated)
	assert.Len(t, payments.settled, 1)
}

func TestSettlementFailureLeavesClaimForRetry(t *testing.T) {
	svc, payments := fixture()
	ctx := context.Background()

	payments.settleErr = errors.New("connection reset")
	require.Error(t, svc.HandleCallback(ctx, successCallback("ws_CO_test")))

	// The failed attempt must not consume the claim.
	assert.False(t, payments.txns["ws_CO_test"].OrdersCreated)
	assert.Empty(t, payments.settled)

	// The polling client's retry settles the payment.
	txn, err := svc.ProcessCompleted(ctx, "user-1", "ws_CO_test")
	require.NoError(t, err)
	assert.True(t, txn.OrdersCreated)
	require.Len(t, payments.settled, 1)
	assert.Len(t, payments.settled[0].Orders, 2)
}

func TestProcessCompletedRequiresCompletion(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.ProcessCompleted(context.Background(), "user-1", "ws_CO_test")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestStatusHidesOtherUsersTransactions(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Status(context.Background(), "user-2", "ws_CO_test")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
