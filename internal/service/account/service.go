package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"farmmarket/internal/auth"
	"farmmarket/internal/domain"
	userrepo "farmmarket/internal/repository/user"
)

// ErrBadCredentials covers both unknown usernames and wrong passwords so
// login failures do not leak which one it was.
var ErrBadCredentials = errors.New("invalid username or password")

const resetCodeTTL = 15 * time.Minute

type userRepo interface {
	Create(ctx context.Context, in userrepo.CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in userrepo.UpdateProfileInput) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CreateResetCode(ctx context.Context, username, code string, expiresAt time.Time) error
	ConsumeResetCode(ctx context.Context, username, code string) error
}

type mailer interface {
	SendResetCode(to, code string) error
}

type Service struct {
	repo   userRepo
	tokens *auth.TokenManager
	mail   mailer
	logger *zap.Logger
}

func New(repo userrepo.Repository, tokens *auth.TokenManager, mail mailer, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail, logger: logger}
}

type SignupInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	MpesaNumber *string `json:"mpesa_number,omitempty"`
	Location    *string `json:"location_string,omitempty"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" {
		return nil, domain.Validationf("username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, domain.Validationf("password must be at least 8 characters")
	}

	role := domain.RoleCustomer
	switch domain.Role(in.Role) {
	case "", domain.RoleCustomer:
	case domain.RoleVendor:
		role = domain.RoleVendor
	default:
		return nil, domain.Validationf("role must be Customer or Vendor")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, userrepo.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		MpesaNumber:  in.MpesaNumber,
		Location:     in.Location,
	})
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if u.Banned {
		return nil, domain.ErrForbidden
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	Username          *string `json:"username,omitempty"`
	Email             *string `json:"email,omitempty"`
	SecondaryEmail    *string `json:"secondary_email,omitempty"`
	MpesaNumber       *string `json:"mpesa_number,omitempty"`
	PaymentPreference *string `json:"payment_preference,omitempty"`
	Location          *string `json:"location_string,omitempty"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	if err := s.repo.UpdateProfile(ctx, userID, userrepo.UpdateProfileInput{
		Username:          in.Username,
		Email:             in.Email,
		SecondaryEmail:    in.SecondaryEmail,
		MpesaNumber:       in.MpesaNumber,
		PaymentPreference: in.PaymentPreference,
		Location:          in.Location,
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return domain.Validationf("current password is incorrect")
	}
	if len(next) < 8 {
		return domain.Validationf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// RequestPasswordReset mails a one-time code. Unknown usernames are
// reported as success so the endpoint cannot be used to probe accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, username string) error {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}
	if err := s.repo.CreateResetCode(ctx, u.Username, code, time.Now().Add(resetCodeTTL)); err != nil {
		return err
	}
	if err := s.mail.SendResetCode(u.Email, code); err != nil {
		s.logger.Error("reset code mail failed", zap.String("username", u.Username), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validationf("password must be at least 8 characters")
	}
	if err := s.repo.ConsumeResetCode(ctx, strings.TrimSpace(username), code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("invalid or expired reset code")
		}
		return err
	}
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, string(hash))
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
