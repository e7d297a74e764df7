package domain

import "time"

const (
	ShippingPending   = "pending"
	ShippingShipped   = "shipped"
	ShippingDelivered = "delivered"
	ShippingCancelled = "cancelled"
	ShippingDisputed  = "disputed"
)

type ShippingOrder struct {
	ID                      string     `json:"id"`
	CustomerID              string     `json:"customer_id"`
	ProductID               string     `json:"product_id"`
	VendorID                string     `json:"vendor_id"`
	Quantity                int        `json:"quantity"`
	TotalAmount             float64    `json:"total_amount"`
	ShippingStatus          string     `json:"shipping_status"`
	TrackingNumber          *string    `json:"tracking_number,omitempty"`
	ShippingAddress         *string    `json:"shipping_address,omitempty"`
	CustomerVerified        bool       `json:"customer_verified"`
	PaymentReleased         bool       `json:"payment_released"`
	VerificationRequestedAt *time.Time `json:"verification_requested_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	CustomerUsername        string     `json:"customer_username"`
	VendorUsername          string     `json:"vendor_username"`
	ProductName             string     `json:"product_name"`
}
