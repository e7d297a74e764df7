package follow

import (
	"context"

	"farmmarket/internal/domain"
)

type Repository interface {
	Follow(ctx context.Context, followerID, vendorID string) (*domain.Follow, error)
	Unfollow(ctx context.Context, followerID, vendorID string) error
	IsFollowing(ctx context.Context, followerID, vendorID string) (bool, error)
	ListFollowed(ctx context.Context, followerID string) ([]domain.Follow, error)
	ListFollowers(ctx context.Context, vendorID string) ([]domain.Follow, error)
	VendorProfile(ctx context.Context, vendorID string) (*domain.VendorProfile, error)
}
