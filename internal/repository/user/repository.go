package user

import (
	"context"
	"time"

	"farmmarket/internal/domain"
)

// CreateUserInput carries the fields persisted at signup.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Role         domain.Role
	MpesaNumber  *string
	Location     *string
}

// UpdateProfileInput carries optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	Username          *string
	Email             *string
	SecondaryEmail    *string
	MpesaNumber       *string
	PaymentPreference *string
	Location          *string
}

type Repository interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	GetPendingVendors(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdateVerification(ctx context.Context, id string, verified bool) error
	SetBanned(ctx context.Context, id string, banned bool) error
	UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	WalletBalance(ctx context.Context, id string) (float64, error)
	DebitWallet(ctx context.Context, id string, amount float64) (float64, error)

	CreateResetCode(ctx context.Context, username, code string, expiresAt time.Time) error
	ConsumeResetCode(ctx context.Context, username, code string) error
}
