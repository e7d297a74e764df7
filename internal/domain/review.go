package domain

import "time"

type Review struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	ProductID        string    `json:"product_id"`
	VendorID         string    `json:"vendor_id"`
	Rating           int       `json:"rating"`
	Comment          *string   `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	CustomerUsername string    `json:"customer_username"`
	ProductName      string    `json:"product_name"`
}
