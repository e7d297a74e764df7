package domain

import "time"

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Category          string    `json:"category"`
	Description       string    `json:"description,omitempty"`
	Image             *string   `json:"image,omitempty"`
	QuantityAvailable int       `json:"quantity_available"`
	VendorID          string    `json:"vendor_id"`
	VendorLocation    *string   `json:"vendor_location,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
