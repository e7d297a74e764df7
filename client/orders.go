package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"farmmarket/internal/domain"
)

func (c *Client) ListOrders(ctx context.Context) ([]domain.ShippingOrder, error) {
	var resp struct {
		Orders []domain.ShippingOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.ShippingOrder, error) {
	var o domain.ShippingOrder
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+id, nil, &o, ""); err != nil {
		return nil, err
	}
	return &o, nil
}

// ShowVerificationPrompt reports whether the UI should ask the customer
// "did you receive this order?". The prompt appears once the vendor marks
// the order delivered and disappears after the customer answers.
func ShowVerificationPrompt(o domain.ShippingOrder) bool {
	return o.ShippingStatus == domain.ShippingDelivered && !o.CustomerVerified
}

type VerifyDeliveryResult struct {
	Order           *domain.ShippingOrder `json:"order"`
	PaymentReleased bool                  `json:"payment_released"`
}

// VerifyDelivery answers the delivery prompt. received=true releases the
// vendor's payment; false disputes the order. The call carries a fresh
// idempotency key so a retry after a network error cannot double-release.
func (c *Client) VerifyDelivery(ctx context.Context, orderID string, received bool) (*VerifyDeliveryResult, error) {
	body := map[string]bool{"received": received}
	var result VerifyDeliveryResult
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+orderID+"/verify", body, &result, uuid.NewString()); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateOrderStatus is the vendor-side shipping transition.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string, trackingNumber *string) (*domain.ShippingOrder, error) {
	body := map[string]interface{}{"status": status}
	if trackingNumber != nil {
		body["tracking_number"] = *trackingNumber
	}
	var o domain.ShippingOrder
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/status", body, &o, ""); err != nil {
		return nil, err
	}
	return &o, nil
}
