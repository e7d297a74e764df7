package domain

import "time"

const (
	PaymentInitiated = "initiated"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// PaymentTerminal reports whether a transaction status will never change again.
func PaymentTerminal(status string) bool {
	switch status {
	case PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

type PaymentTransaction struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	CheckoutRequestID  string    `json:"checkout_request_id"`
	MerchantRequestID  string    `json:"merchant_request_id"`
	MpesaReceiptNumber *string   `json:"mpesa_receipt_number,omitempty"`
	PhoneNumber        string    `json:"phone_number"`
	Amount             float64   `json:"amount"`
	Status             string    `json:"status"`
	TransactionDate    *string   `json:"transaction_date,omitempty"`
	CartItemIDs        []string  `json:"cart_item_ids,omitempty"`
	OrdersCreated      bool      `json:"orders_created"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
