package social

import (
	"context"

	"farmmarket/internal/domain"
	followrepo "farmmarket/internal/repository/follow"
)

type followRepo interface {
	Follow(ctx context.Context, followerID, vendorID string) (*domain.Follow, error)
	Unfollow(ctx context.Context, followerID, vendorID string) error
	IsFollowing(ctx context.Context, followerID, vendorID string) (bool, error)
	ListFollowed(ctx context.Context, followerID string) ([]domain.Follow, error)
	ListFollowers(ctx context.Context, vendorID string) ([]domain.Follow, error)
	VendorProfile(ctx context.Context, vendorID string) (*domain.VendorProfile, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	repo  followRepo
	users userRepo
}

func New(repo followrepo.Repository, users userRepo) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) Follow(ctx context.Context, followerID, vendorID string) (*domain.Follow, error) {
	if followerID == vendorID {
		return nil, domain.Validationf("cannot follow yourself")
	}
	v, err := s.users.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if v.Role != domain.RoleVendor {
		return nil, domain.Validationf("can only follow vendors")
	}
	return s.repo.Follow(ctx, followerID, vendorID)
}

func (s *Service) Unfollow(ctx context.Context, followerID, vendorID string) error {
	return s.repo.Unfollow(ctx, followerID, vendorID)
}

func (s *Service) IsFollowing(ctx context.Context, followerID, vendorID string) (bool, error) {
	return s.repo.IsFollowing(ctx, followerID, vendorID)
}

func (s *Service) Following(ctx context.Context, followerID string) ([]domain.Follow, error) {
	follows, err := s.repo.ListFollowed(ctx, followerID)
	if err != nil {
		return nil, err
	}
	if follows == nil {
		follows = []domain.Follow{}
	}
	return follows, nil
}

func (s *Service) Followers(ctx context.Context, vendorID string) ([]domain.Follow, error) {
	follows, err := s.repo.ListFollowers(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if follows == nil {
		follows = []domain.Follow{}
	}
	return follows, nil
}

func (s *Service) VendorProfile(ctx context.Context, vendorID string) (*domain.VendorProfile, error) {
	return s.repo.VendorProfile(ctx, vendorID)
}
