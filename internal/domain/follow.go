package domain

import "time"

type Follow struct {
	ID               string    `json:"id"`
	FollowerID       string    `json:"follower_id"`
	VendorID         string    `json:"vendor_id"`
	CreatedAt        time.Time `json:"created_at"`
	FollowerUsername string    `json:"follower_username"`
	VendorUsername   string    `json:"vendor_username"`
}

// VendorProfile is the public vendor page with sales aggregates.
type VendorProfile struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Verified       bool    `json:"verified"`
	TotalPurchases int64   `json:"total_purchases"`
	TotalRevenue   float64 `json:"total_revenue"`
	FollowerCount  int64   `json:"follower_count"`
}
