package order

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

const orderColumns = `so.id::text, so.customer_id::text, so.product_id::text, so.vendor_id::text,
so.quantity, so.total_amount, so.shipping_status, so.tracking_number, so.shipping_address,
so.customer_verified, so.payment_released, so.verification_requested_at, so.created_at, so.updated_at,
cu.username, vu.username, p.name`

const orderJoin = `
FROM shipping_orders so
JOIN users cu ON so.customer_id = cu.id
JOIN users vu ON so.vendor_id = vu.id
JOIN products p ON so.product_id = p.id`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.ShippingOrder, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+orderJoin+` WHERE so.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.ShippingOrder, error) {
	return r.list(ctx, `
SELECT `+orderColumns+orderJoin+`
WHERE so.customer_id = $1
ORDER BY so.created_at DESC`, customerID)
}

func (r *postgresRepo) ListByVendor(ctx context.Context, vendorID string) ([]domain.ShippingOrder, error) {
	return r.list(ctx, `
SELECT `+orderColumns+orderJoin+`
WHERE so.vendor_id = $1
ORDER BY so.created_at DESC`, vendorID)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.ShippingOrder, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.ShippingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, vendorID, status string, trackingNumber *string) error {
	const q = `
UPDATE shipping_orders
SET shipping_status = $1,
    tracking_number = COALESCE($2, tracking_number),
    verification_requested_at = CASE WHEN $1 = 'delivered' THEN now() ELSE verification_requested_at END,
    updated_at = now()
WHERE id = $3 AND vendor_id = $4`
	cmd, err := r.pool.Exec(ctx, q, status, trackingNumber, id, vendorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) VerifyAndRelease(ctx context.Context, id, customerID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var vendorID string
	var amount float64
	var ownerID string
	var alreadyReleased bool
	err = tx.QueryRow(ctx, `
SELECT vendor_id::text, total_amount, customer_id::text, payment_released
FROM shipping_orders
WHERE id = $1
FOR UPDATE`, id).Scan(&vendorID, &amount, &ownerID, &alreadyReleased)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	if ownerID != customerID {
		return false, domain.ErrNotFound
	}
	if alreadyReleased {
		// Second verification is a no-op; funds move exactly once.
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
UPDATE shipping_orders
SET customer_verified = TRUE, payment_released = TRUE, updated_at = now()
WHERE id = $1`, id); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`, amount, vendorID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresRepo) MarkDisputed(ctx context.Context, id, customerID string) (*domain.ShippingOrder, error) {
	const q = `
UPDATE shipping_orders
SET shipping_status = 'disputed', updated_at = now()
WHERE id = $1 AND customer_id = $2 AND payment_released = FALSE
RETURNING id::text`
	var returned string
	if err := r.pool.QueryRow(ctx, q, id, customerID).Scan(&returned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, returned)
}

func (r *postgresRepo) HasDeliveredOrder(ctx context.Context, customerID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM shipping_orders
	WHERE customer_id = $1 AND product_id = $2 AND shipping_status = 'delivered'
)`, customerID, productID).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) VendorSales(ctx context.Context, vendorID string) (*domain.VendorSalesReport, error) {
	report := &domain.VendorSalesReport{SalesByProduct: []domain.ProductSales{}}
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
FROM shipping_orders
WHERE vendor_id = $1 AND shipping_status <> 'cancelled'`, vendorID).
		Scan(&report.TotalSales, &report.TotalOrders)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT so.product_id::text, p.name, SUM(so.quantity), SUM(so.total_amount)
FROM shipping_orders so
JOIN products p ON so.product_id = p.id
WHERE so.vendor_id = $1 AND so.shipping_status <> 'cancelled'
GROUP BY so.product_id, p.name
ORDER BY SUM(so.total_amount) DESC`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps domain.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.QuantitySold, &ps.TotalRevenue); err != nil {
			return nil, err
		}
		report.SalesByProduct = append(report.SalesByProduct, ps)
	}
	return report, rows.Err()
}

func (r *postgresRepo) CustomerPurchases(ctx context.Context, customerID string) (*domain.CustomerPurchaseReport, error) {
	report := &domain.CustomerPurchaseReport{
		PurchasesByCategory: []domain.CategoryPurchase{},
		PurchasesByVendor:   []domain.VendorPurchase{},
	}
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
FROM shipping_orders
WHERE customer_id = $1 AND shipping_status <> 'cancelled'`, customerID).
		Scan(&report.TotalSpent, &report.TotalOrders)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.category, SUM(so.total_amount), SUM(so.quantity)
FROM shipping_orders so
JOIN products p ON so.product_id = p.id
WHERE so.customer_id = $1 AND so.shipping_status <> 'cancelled'
GROUP BY p.category
ORDER BY SUM(so.total_amount) DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cp domain.CategoryPurchase
		if err := rows.Scan(&cp.Category, &cp.TotalSpent, &cp.Quantity); err != nil {
			return nil, err
		}
		report.PurchasesByCategory = append(report.PurchasesByCategory, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vendorRows, err := r.pool.Query(ctx, `
SELECT so.vendor_id::text, u.username, SUM(so.total_amount), COUNT(*)
FROM shipping_orders so
JOIN users u ON so.vendor_id = u.id
WHERE so.customer_id = $1 AND so.shipping_status <> 'cancelled'
GROUP BY so.vendor_id, u.username
ORDER BY SUM(so.total_amount) DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer vendorRows.Close()
	for vendorRows.Next() {
		var vp domain.VendorPurchase
		if err := vendorRows.Scan(&vp.VendorID, &vp.VendorName, &vp.TotalSpent, &vp.OrderCount); err != nil {
			return nil, err
		}
		report.PurchasesByVendor = append(report.PurchasesByVendor, vp)
	}
	return report, vendorRows.Err()
}

func scanOrder(row pgx.Row) (*domain.ShippingOrder, error) {
	var o domain.ShippingOrder
	if err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.ProductID,
		&o.VendorID,
		&o.Quantity,
		&o.TotalAmount,
		&o.ShippingStatus,
		&o.TrackingNumber,
		&o.ShippingAddress,
		&o.CustomerVerified,
		&o.PaymentReleased,
		&o.VerificationRequestedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CustomerUsername,
		&o.VendorUsername,
		&o.ProductName,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
