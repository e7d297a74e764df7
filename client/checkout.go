package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmmarket/internal/domain"
	"farmmarket/internal/mpesa"
)

// CheckoutState tracks where a payment attempt is in its lifecycle.
type CheckoutState string

const (
	StateIdle       CheckoutState = "idle"
	StateValidating CheckoutState = "validating"
	StateSubmitting CheckoutState = "submitting"
	StateAwaiting   CheckoutState = "awaiting_confirmation"
	StateSettled    CheckoutState = "settled"
	StateFailed     CheckoutState = "failed"
)

const (
	pollInitialInterval = 500 * time.Millisecond
	pollMaxInterval     = 8 * time.Second
	pollDeadline        = 90 * time.Second
)

// CheckoutFlow drives one payment attempt from submission to a terminal
// status. A flow is single use; start a new one to retry.
type CheckoutFlow struct {
	client *Client
	key    string

	mu    sync.RWMutex
	state CheckoutState
	txn   *domain.PaymentTransaction
}

func (c *Client) NewCheckout() *CheckoutFlow {
	return &CheckoutFlow{
		client: c,
		key:    uuid.NewString(),
		state:  StateIdle,
	}
}

func (f *CheckoutFlow) State() CheckoutState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Transaction returns the pending or settled transaction, nil before
// submission succeeds.
func (f *CheckoutFlow) Transaction() *domain.PaymentTransaction {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.txn
}

func (f *CheckoutFlow) setState(s CheckoutState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

type checkoutRequest struct {
	PhoneNumber   string   `json:"phone_number"`
	CartItemIDs   []string `json:"cart_item_ids,omitempty"`
	ExpectedTotal *float64 `json:"expected_total,omitempty"`
}

type checkoutResponse struct {
	Transaction     *domain.PaymentTransaction `json:"transaction"`
	CustomerMessage string                     `json:"customer_message"`
}

// Submit pushes the payment prompt to the customer's phone. The flow's
// idempotency key makes a retried Submit safe after a network error.
// expectedTotal guards against paying a total the user never saw; pass
// nil to skip the check. Phone format and amount bounds are checked
// locally before anything is sent.
func (f *CheckoutFlow) Submit(ctx context.Context, phone string, cartItemIDs []string, expectedTotal *float64) (*domain.PaymentTransaction, error) {
	f.setState(StateValidating)
	normalized, err := mpesa.NormalizePhone(phone)
	if err != nil {
		f.setState(StateFailed)
		return nil, err
	}
	if expectedTotal != nil && (*expectedTotal < mpesa.MinChargeAmount || *expectedTotal > mpesa.MaxChargeAmount) {
		f.setState(StateFailed)
		return nil, domain.Validationf("total %.2f outside the chargeable range %.0f-%.0f",
			*expectedTotal, mpesa.MinChargeAmount, mpesa.MaxChargeAmount)
	}

	f.setState(StateSubmitting)
	var resp checkoutResponse
	err = f.client.do(ctx, http.MethodPost, "/api/checkout", checkoutRequest{
		PhoneNumber:   normalized,
		CartItemIDs:   cartItemIDs,
		ExpectedTotal: expectedTotal,
	}, &resp, f.key)
	if err != nil {
		f.setState(StateFailed)
		return nil, err
	}

	f.mu.Lock()
	f.txn = resp.Transaction
	f.state = StateAwaiting
	f.mu.Unlock()
	return resp.Transaction, nil
}

// WaitForSettlement polls the transaction status with exponential backoff
// until it reaches a terminal state or the deadline passes. On timeout
// the flow stays in the awaiting state and ErrSettlementTimeout is
// returned; the payment may still settle afterwards.
func (f *CheckoutFlow) WaitForSettlement(ctx context.Context) (*domain.PaymentTransaction, error) {
	f.mu.RLock()
	txn := f.txn
	f.mu.RUnlock()
	if txn == nil {
		return nil, &RequestError{Status: http.StatusBadRequest, Message: "no transaction submitted"}
	}

	ctx, cancel := context.WithTimeout(ctx, pollDeadline)
	defer cancel()

	interval := pollInitialInterval
	for {
		select {
		case <-ctx.Done():
			return nil, ErrSettlementTimeout
		case <-time.After(interval):
		}

		var current domain.PaymentTransaction
		err := f.client.do(ctx, http.MethodGet, "/api/payments/status/"+txn.CheckoutRequestID, nil, &current, "")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrSettlementTimeout
			}
			// Transient poll failures keep the loop going.
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				return nil, err
			}
		} else if domain.PaymentTerminal(current.Status) {
			f.mu.Lock()
			f.txn = &current
			if current.Status == domain.PaymentCompleted {
				f.state = StateSettled
			} else {
				f.state = StateFailed
			}
			f.mu.Unlock()

			if current.Status == domain.PaymentCompleted {
				// Make sure orders exist even if the server callback
				// has not fired yet.
				final, err := f.processCompleted(ctx, current.CheckoutRequestID)
				if err == nil {
					return final, nil
				}
			}
			return &current, nil
		}

		interval *= 2
		if interval > pollMaxInterval {
			interval = pollMaxInterval
		}
	}
}

func (f *CheckoutFlow) processCompleted(ctx context.Context, checkoutRequestID string) (*domain.PaymentTransaction, error) {
	body := map[string]string{"checkout_request_id": checkoutRequestID}
	var txn domain.PaymentTransaction
	if err := f.client.do(ctx, http.MethodPost, "/api/payments/process-completed", body, &txn, ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.txn = &txn
	f.mu.Unlock()
	return &txn, nil
}

// PaymentHistory lists the caller's transactions, newest first.
func (c *Client) PaymentHistory(ctx context.Context) ([]domain.PaymentTransaction, error) {
	var resp struct {
		Transactions []domain.PaymentTransaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/payments/history", nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}
