package product

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

const productColumns = `p.id::text, p.name, p.price, p.category, p.description, p.image,
p.quantity, p.vendor_id::text, u.location_string, p.created_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, price, category, description, quantity, image, vendor_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text`
	var id string
	if err := r.pool.QueryRow(ctx, q, in.Name, in.Price, in.Category, in.Description, in.Quantity, in.Image, in.VendorID).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products p
JOIN users u ON p.vendor_id = u.id
WHERE p.id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products p
JOIN users u ON p.vendor_id = u.id
WHERE u.banned = FALSE`
	var args []interface{}
	if filter.VendorID != "" {
		args = append(args, filter.VendorID)
		q += ` AND p.vendor_id = $1`
	} else if filter.Location != "" {
		args = append(args, filter.Location)
		q += ` AND u.location_string ILIKE '%' || $1 || '%'`
	}
	q += ` ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, id, vendorID string, in CreateProductInput) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $1, price = $2, category = $3, description = $4, quantity = $5, image = COALESCE($6, image)
WHERE id = $7 AND vendor_id = $8
RETURNING id::text`
	var returned string
	err := r.pool.QueryRow(ctx, q, in.Name, in.Price, in.Category, in.Description, in.Quantity, in.Image, id, vendorID).Scan(&returned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, returned)
}

func (r *postgresRepo) Delete(ctx context.Context, id, vendorID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Category,
		&p.Description,
		&p.Image,
		&p.QuantityAvailable,
		&p.VendorID,
		&p.VendorLocation,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
