package review

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

const reviewColumns = `r.id::text, r.customer_id::text, r.product_id::text, r.vendor_id::text,
r.rating, r.comment, r.created_at, u.username, p.name`

const reviewJoin = `
FROM reviews r
JOIN users u ON r.customer_id = u.id
JOIN products p ON r.product_id = p.id`

func (r *postgresRepo) Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO reviews (customer_id, product_id, vendor_id, rating, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text`,
		in.CustomerID, in.ProductID, in.VendorID, in.Rating, in.Comment).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	rev, err := scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+reviewJoin+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return r.list(ctx, `
SELECT `+reviewColumns+reviewJoin+`
WHERE r.product_id = $1
ORDER BY r.created_at DESC`, productID)
}

func (r *postgresRepo) ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	return r.list(ctx, `
SELECT `+reviewColumns+reviewJoin+`
WHERE r.vendor_id = $1
ORDER BY r.created_at DESC`, vendorID)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Review, error) {
	return r.list(ctx, `
SELECT `+reviewColumns+reviewJoin+`
WHERE r.customer_id = $1
ORDER BY r.created_at DESC`, customerID)
}

func (r *postgresRepo) AverageRating(ctx context.Context, productID string) (float64, int, error) {
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE product_id = $1`, productID).
		Scan(&avg, &count)
	return avg, count, err
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rev)
	}
	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rev domain.Review
	if err := row.Scan(
		&rev.ID,
		&rev.CustomerID,
		&rev.ProductID,
		&rev.VendorID,
		&rev.Rating,
		&rev.Comment,
		&rev.CreatedAt,
		&rev.CustomerUsername,
		&rev.ProductName,
	); err != nil {
		return nil, err
	}
	return &rev, nil
}
