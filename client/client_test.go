package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmmarket/internal/domain"
)

func TestCartStoreReconciliation(t *testing.T) {
	serverItems := []domain.CartItem{
		{ID: "item-1", ProductID: "prod-1", Quantity: 2, Product: domain.Product{ID: "prod-1", Price: 50}},
		{ID: "item-2", ProductID: "prod-2", Quantity: 1, Product: domain.Product{ID: "prod-2", Price: 100}},
	}
	failRemove := true

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"items": serverItems, "total": 200.0})
	})
	mux.HandleFunc("DELETE /api/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if failRemove {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
			return
		}
		serverItems = serverItems[:1]
		json.NewEncoder(w).Encode(map[string]string{"status": "removed"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := New(srv.URL).Cart()
	ctx := context.Background()

	require.NoError(t, cart.Refresh(ctx))
	assert.Len(t, cart.Items(), 2)
	assert.Equal(t, 200.0, cart.Total())

	// Failed removal leaves the local view untouched.
	err := cart.Remove(ctx, "item-2")
	require.Error(t, err)
	assert.Len(t, cart.Items(), 2)

	failRemove = false
	require.NoError(t, cart.Remove(ctx, "item-2"))
	assert.Len(t, cart.Items(), 1)
}

func TestCheckoutFlowSettles(t *testing.T) {
	var polls atomic.Int32
	var idemKeys []string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		idemKeys = append(idemKeys, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": domain.PaymentTransaction{
				CheckoutRequestID: "ws_CO_test",
				Amount:            250,
				Status:            domain.PaymentInitiated,
			},
			"customer_message": "check your phone",
		})
	})
	mux.HandleFunc("GET /api/payments/status/ws_CO_test", func(w http.ResponseWriter, r *http.Request) {
		status := domain.PaymentInitiated
		if polls.Add(1) >= 2 {
			status = domain.PaymentCompleted
		}
		json.NewEncoder(w).Encode(domain.PaymentTransaction{
			CheckoutRequestID: "ws_CO_test",
			Amount:            250,
			Status:            status,
		})
	})
	mux.HandleFunc("POST /api/payments/process-completed", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.PaymentTransaction{
			CheckoutRequestID: "ws_CO_test",
			Amount:            250,
			Status:            domain.PaymentCompleted,
			OrdersCreated:     true,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow := New(srv.URL).NewCheckout()
	ctx := context.Background()

	txn, err := flow.Submit(ctx, "0712345678", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateAwaiting, flow.State())
	assert.Equal(t, "ws_CO_test", txn.CheckoutRequestID)
	require.Len(t, idemKeys, 1)
	assert.NotEmpty(t, idemKeys[0])

	final, err := flow.WaitForSettlement(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, flow.State())
	assert.Equal(t, domain.PaymentCompleted, final.Status)
	assert.True(t, final.OrdersCreated)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestCheckoutFlowFailedPayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": domain.PaymentTransaction{
				CheckoutRequestID: "ws_CO_fail",
				Status:            domain.PaymentInitiated,
			},
		})
	})
	mux.HandleFunc("GET /api/payments/status/ws_CO_fail", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.PaymentTransaction{
			CheckoutRequestID: "ws_CO_fail",
			Status:            domain.PaymentCancelled,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow := New(srv.URL).NewCheckout()
	ctx := context.Background()

	_, err := flow.Submit(ctx, "0712345678", nil, nil)
	require.NoError(t, err)

	final, err := flow.WaitForSettlement(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, flow.State())
	assert.Equal(t, domain.PaymentCancelled, final.Status)
}

func TestCheckoutSubmitRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "cart total changed"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow := New(srv.URL).NewCheckout()
	_, err := flow.Submit(context.Background(), "0712345678", nil, nil)

	// Server-side validation failures surface as the same typed error as
	// local ones.
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "cart total changed", validation.Msg)
	assert.Equal(t, StateFailed, flow.State())
}

func TestSubmitValidatesBeforeSending(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body struct {
			PhoneNumber string `json:"phone_number"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "254712345678", body.PhoneNumber)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": domain.PaymentTransaction{CheckoutRequestID: "ws_CO_guard"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	flow := c.NewCheckout()
	_, err := flow.Submit(ctx, "0812345678", nil, nil)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, StateFailed, flow.State())

	huge := 70001.0
	flow = c.NewCheckout()
	_, err = flow.Submit(ctx, "0712345678", nil, &huge)
	require.ErrorAs(t, err, &validation)

	// Nothing reached the server; a separator-laden phone goes out
	// normalized.
	assert.Equal(t, int32(0), hits.Load())
	flow = c.NewCheckout()
	_, err = flow.Submit(ctx, "0712-345-678", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCartStoreLocalGuards(t *testing.T) {
	var mutations atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []domain.CartItem{
				{ID: "item-1", ProductID: "prod-1", Quantity: 2,
					Product: domain.Product{ID: "prod-1", Price: 50, QuantityAvailable: 3}},
			},
			"total": 100.0,
		})
	})
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		mutations.Add(1)
		json.NewEncoder(w).Encode(domain.CartItem{ID: "item-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := New(srv.URL).Cart()
	ctx := context.Background()
	require.NoError(t, cart.Refresh(ctx))

	_, err := cart.Add(ctx, "prod-1", 0)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	// 2 already carted + 2 more exceeds the cached stock of 3.
	_, err = cart.Add(ctx, "prod-1", 2)
	var stock *domain.StockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, 4, stock.Requested)
	assert.Equal(t, 3, stock.Available)

	err = cart.SetQuantity(ctx, "item-1", 5)
	require.ErrorAs(t, err, &stock)

	// Neither rejected call reached the server.
	assert.Equal(t, int32(0), mutations.Load())

	_, err = cart.Add(ctx, "prod-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), mutations.Load())
}

func TestServerStockConflictIsTyped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"items": []domain.CartItem{}, "total": 0.0})
	})
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":      "requested quantity 7 exceeds available stock 3 for product prod-9",
			"product_id": "prod-9",
			"requested":  7,
			"available":  3,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := New(srv.URL).Cart()
	_, err := cart.Add(context.Background(), "prod-9", 7)

	var stock *domain.StockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "prod-9", stock.ProductID)
	assert.Equal(t, 7, stock.Requested)
	assert.Equal(t, 3, stock.Available)
}

func TestShowVerificationPrompt(t *testing.T) {
	assert.True(t, ShowVerificationPrompt(domain.ShippingOrder{
		ShippingStatus: domain.ShippingDelivered,
	}))
	assert.False(t, ShowVerificationPrompt(domain.ShippingOrder{
		ShippingStatus:   domain.ShippingDelivered,
		CustomerVerified: true,
	}))
	assert.False(t, ShowVerificationPrompt(domain.ShippingOrder{
		ShippingStatus: domain.ShippingShipped,
	}))
	assert.False(t, ShowVerificationPrompt(domain.ShippingOrder{
		ShippingStatus: domain.ShippingDisputed,
	}))
}

func TestVerifyDeliveryCarriesIdempotencyKey(t *testing.T) {
	var keys []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders/order-1/verify", func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(VerifyDeliveryResult{
			Order:           &domain.ShippingOrder{ID: "order-1", CustomerVerified: true},
			PaymentReleased: true,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.VerifyDelivery(context.Background(), "order-1", true)
	require.NoError(t, err)
	assert.True(t, result.PaymentReleased)
	require.Len(t, keys, 1)
	assert.NotEmpty(t, keys[0])
}

func TestUnauthorizedMapsToErrNotAuthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := New(srv.URL).Me(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
