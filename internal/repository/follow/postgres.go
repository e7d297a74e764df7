package follow

import (
	"context"
	"errors"

	"farmmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const followColumns = `f.id::text, f.follower_id::text, f.vendor_id::text, f.created_at,
fu.username, vu.username`

const followJoin = `
FROM follows f
JOIN users fu ON f.follower_id = fu.id
JOIN users vu ON f.vendor_id = vu.id`

func (r *postgresRepo) Follow(ctx context.Context, followerID, vendorID string) (*domain.Follow, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO follows (follower_id, vendor_id)
VALUES ($1, $2)
RETURNING id::text`, followerID, vendorID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	f, err := scanFollow(r.pool.QueryRow(ctx, `SELECT `+followColumns+followJoin+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *postgresRepo) Unfollow(ctx context.Context, followerID, vendorID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM follows WHERE follower_id = $1 AND vendor_id = $2`, followerID, vendorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) IsFollowing(ctx context.Context, followerID, vendorID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND vendor_id = $2)`,
		followerID, vendorID).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) ListFollowed(ctx context.Context, followerID string) ([]domain.Follow, error) {
	return r.list(ctx, `
SELECT `+followColumns+followJoin+`
WHERE f.follower_id = $1
ORDER BY f.created_at DESC`, followerID)
}

func (r *postgresRepo) ListFollowers(ctx context.Context, vendorID string) ([]domain.Follow, error) {
	return r.list(ctx, `
SELECT `+followColumns+followJoin+`
WHERE f.vendor_id = $1
ORDER BY f.created_at DESC`, vendorID)
}

func (r *postgresRepo) VendorProfile(ctx context.Context, vendorID string) (*domain.VendorProfile, error) {
	var p domain.VendorProfile
	err := r.pool.QueryRow(ctx, `
SELECT u.id::text, u.username, u.email, u.verified,
       (SELECT COUNT(*) FROM shipping_orders so
        WHERE so.vendor_id = u.id AND so.shipping_status <> 'cancelled'),
       (SELECT COALESCE(SUM(so.total_amount), 0) FROM shipping_orders so
        WHERE so.vendor_id = u.id AND so.shipping_status <> 'cancelled'),
       (SELECT COUNT(*) FROM follows f WHERE f.vendor_id = u.id)
FROM users u
WHERE u.id = $1 AND u.role = 'Vendor'`, vendorID).
		Scan(&p.ID, &p.Username, &p.Email, &p.Verified, &p.TotalPurchases, &p.TotalRevenue, &p.FollowerCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Follow, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var follows []domain.Follow
	for rows.Next() {
		f, err := scanFollow(rows)
		if err != nil {
			return nil, err
		}
		follows = append(follows, *f)
	}
	return follows, rows.Err()
}

func scanFollow(row pgx.Row) (*domain.Follow, error) {
	var f domain.Follow
	if err := row.Scan(
		&f.ID,
		&f.FollowerID,
		&f.VendorID,
		&f.CreatedAt,
		&f.FollowerUsername,
		&f.VendorUsername,
	); err != nil {
		return nil, err
	}
	return &f, nil
}
