package domain

import "time"

const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"

	// ReportTypeDispute is filed automatically when a customer answers the
	// delivery verification prompt with "not received".
	ReportTypeDispute = "delivery_dispute"

	// SuspensionThreshold is the report count at which a vendor can no
	// longer publish products.
	SuspensionThreshold = 5
)

type VendorReport struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	VendorID         string    `json:"vendor_id"`
	ProductID        *string   `json:"product_id,omitempty"`
	ReportType       string    `json:"report_type"`
	Description      *string   `json:"description,omitempty"`
	Status           string    `json:"status"`
	AdminNotes       *string   `json:"admin_notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	CustomerUsername string    `json:"customer_username"`
	VendorUsername   string    `json:"vendor_username"`
	ProductName      *string   `json:"product_name,omitempty"`
}
