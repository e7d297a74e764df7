package domain

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
	RoleVendor   Role = "Vendor"
)

type User struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	PasswordHash      string  `json:"-"`
	Role              Role    `json:"role"`
	Verified          bool    `json:"verified"`
	Banned            bool    `json:"banned"`
	SecondaryEmail    *string `json:"secondary_email,omitempty"`
	MpesaNumber       *string `json:"mpesa_number,omitempty"`
	PaymentPreference *string `json:"payment_preference,omitempty"`
	Location          *string `json:"location_string,omitempty"`
	WalletBalance     float64 `json:"wallet_balance"`
}

// PasswordResetCode is a short-lived one-time code mailed to the user.
type PasswordResetCode struct {
	ID        string
	Username  string
	Code      string
	ExpiresAt string
	Used      bool
}
