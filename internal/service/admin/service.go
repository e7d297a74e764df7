package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"farmmarket/internal/domain"
)

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	GetPendingVendors(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdateVerification(ctx context.Context, id string, verified bool) error
	SetBanned(ctx context.Context, id string, banned bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	users  userRepo
	logger *zap.Logger
}

func New(users userRepo, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// PendingVendors lists vendor accounts awaiting verification.
func (s *Service) PendingVendors(ctx context.Context) ([]domain.User, error) {
	vendors, err := s.users.GetPendingVendors(ctx)
	if err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []domain.User{}
	}
	return vendors, nil
}

func (s *Service) ApproveVendor(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleVendor {
		return nil, domain.Validationf("user is not a vendor")
	}
	if err := s.users.UpdateVerification(ctx, id, true); err != nil {
		return nil, err
	}
	s.logger.Info("vendor approved", zap.String("vendor_id", id))
	return s.users.GetByID(ctx, id)
}

func (s *Service) SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if err := s.users.SetBanned(ctx, id, banned); err != nil {
		return nil, err
	}
	s.logger.Info("user ban updated", zap.String("user_id", id), zap.Bool("banned", banned))
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	switch role {
	case domain.RoleAdmin, domain.RoleCustomer, domain.RoleVendor:
	default:
		return nil, domain.Validationf("invalid role %q", role)
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ResetPassword sets a random temporary password on the account and
// returns it so the admin can hand it to the user out of band.
func (s *Service) ResetPassword(ctx context.Context, id string) (string, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u.Role == domain.RoleAdmin {
		return "", domain.ErrForbidden
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	temp := hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return "", err
	}
	s.logger.Info("password reset by admin", zap.String("user_id", id))
	return temp, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.users.Delete(ctx, id)
}
