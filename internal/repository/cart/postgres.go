package cart

import (
	"context"
	"errors"

	"farmmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const itemColumns = `ci.id::text, ci.user_id::text, ci.product_id::text, ci.quantity,
p.id::text, p.name, p.price, p.category, p.description, p.image, p.quantity, p.vendor_id::text, u.location_string, p.created_at`

const itemJoin = `
FROM cart_items ci
JOIN products p ON ci.product_id = p.id
JOIN users u ON p.vendor_id = u.id`

func (r *postgresRepo) GetForUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return r.queryItems(ctx, `
SELECT `+itemColumns+itemJoin+`
WHERE ci.user_id = $1
ORDER BY ci.created_at ASC`, userID)
}

func (r *postgresRepo) GetByID(ctx context.Context, itemID, userID string) (*domain.CartItem, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
SELECT `+itemColumns+itemJoin+`
WHERE ci.id = $1 AND ci.user_id = $2`, itemID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, userID string, ids []string) ([]domain.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryItems(ctx, `
SELECT `+itemColumns+itemJoin+`
WHERE ci.user_id = $1 AND ci.id = ANY($2)
ORDER BY ci.created_at ASC`, userID, ids)
}

func (r *postgresRepo) AddOrMerge(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING id::text`
	var itemID string
	if err := r.pool.QueryRow(ctx, q, userID, productID, quantity).Scan(&itemID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, itemID, userID)
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, itemID, userID string, quantity int) (*domain.CartItem, error) {
	const q = `
UPDATE cart_items SET quantity = $1, updated_at = now()
WHERE id = $2 AND user_id = $3
RETURNING id::text`
	var returned string
	err := r.pool.QueryRow(ctx, q, quantity, itemID, userID).Scan(&returned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, returned, userID)
}

func (r *postgresRepo) Remove(ctx context.Context, itemID, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	return err
}

func (r *postgresRepo) GetAll(ctx context.Context) ([]domain.CartItem, error) {
	return r.queryItems(ctx, `
SELECT `+itemColumns+itemJoin+`
ORDER BY ci.created_at ASC`)
}

func (r *postgresRepo) queryItems(ctx context.Context, q string, args ...interface{}) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.Product.ID,
		&item.Product.Name,
		&item.Product.Price,
		&item.Product.Category,
		&item.Product.Description,
		&item.Product.Image,
		&item.Product.QuantityAvailable,
		&item.Product.VendorID,
		&item.Product.VendorLocation,
		&item.Product.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
