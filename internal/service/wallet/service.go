package wallet

import (
	"context"

	"go.uber.org/zap"

	"farmmarket/internal/domain"
)

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	WalletBalance(ctx context.Context, id string) (float64, error)
	DebitWallet(ctx context.Context, id string, amount float64) (float64, error)
}

type Service struct {
	users  userRepo
	logger *zap.Logger
}

func New(users userRepo, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

type Balance struct {
	Balance float64 `json:"balance"`
}

func (s *Service) Balance(ctx context.Context, userID string) (*Balance, error) {
	b, err := s.users.WalletBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Balance{Balance: domain.Round2(b)}, nil
}

type WithdrawResult struct {
	Withdrawn  float64 `json:"withdrawn"`
	NewBalance float64 `json:"new_balance"`
	SentTo     string  `json:"sent_to"`
}

// Withdraw debits the vendor wallet and pays out to the M-Pesa number on
// the profile. The debit refuses to overdraw.
func (s *Service) Withdraw(ctx context.Context, userID string, amount float64) (*WithdrawResult, error) {
	amount = domain.Round2(amount)
	if amount <= 0 {
		return nil, domain.Validationf("withdrawal amount must be positive")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.MpesaNumber == nil || *u.MpesaNumber == "" {
		return nil, domain.Validationf("no mpesa number on profile")
	}

	newBalance, err := s.users.DebitWallet(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet withdrawal",
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
		zap.String("destination", *u.MpesaNumber))
	return &WithdrawResult{
		Withdrawn:  amount,
		NewBalance: domain.Round2(newBalance),
		SentTo:     *u.MpesaNumber,
	}, nil
}
