package payment

import (
	"context"
	"errors"
	"strings"

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

const txnColumns = `id::text, user_id::text, checkout_request_id, merchant_request_id,
mpesa_receipt_number, phone_number, amount, status, transaction_date, cart_item_ids,
orders_created, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateTransactionInput) (*domain.PaymentTransaction, error) {
	var csv *string
	if len(in.CartItemIDs) > 0 {
		joined := strings.Join(in.CartItemIDs, ",")
		csv = &joined
	}
	const q = `
INSERT INTO payment_transactions (user_id, checkout_request_id, merchant_request_id, phone_number, amount, cart_item_ids)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + txnColumns
	t, err := scanTransaction(r.pool.QueryRow(ctx, q,
		in.UserID, in.CheckoutRequestID, in.MerchantRequestID, in.PhoneNumber, in.Amount, csv))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PaymentTransaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `
SELECT `+txnColumns+`
FROM payment_transactions
WHERE checkout_request_id = $1`, checkoutRequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.PaymentTransaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+txnColumns+`
FROM payment_transactions
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.PaymentTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *postgresRepo) SetStatus(ctx context.Context, checkoutRequestID, status string, receiptNumber, transactionDate *string) error {
	const q = `
UPDATE payment_transactions
SET status = $1,
    mpesa_receipt_number = COALESCE($2, mpesa_receipt_number),
    transaction_date = COALESCE($3, transaction_date),
    updated_at = now()
WHERE checkout_request_id = $4 AND status = 'initiated'`
	cmd, err := r.pool.Exec(ctx, q, status, receiptNumber, transactionDate, checkoutRequestID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Either unknown id or already settled; disambiguate for callers.
		if _, err := r.GetByCheckoutRequestID(ctx, checkoutRequestID); err != nil {
			return err
		}
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *postgresRepo) SettleOrders(ctx context.Context, in SettleOrdersInput) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE payment_transactions
SET orders_created = TRUE, updated_at = now()
WHERE checkout_request_id = $1 AND orders_created = FALSE`, in.CheckoutRequestID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	for _, o := range in.Orders {
		if _, err := tx.Exec(ctx, `
INSERT INTO shipping_orders (customer_id, product_id, vendor_id, quantity, total_amount, shipping_address)
VALUES ($1, $2, $3, $4, $5, $6)`,
			in.UserID, o.ProductID, o.VendorID, o.Quantity, o.TotalAmount, in.ShippingAddress); err != nil {
			return false, err
		}
		// Stock is never driven negative even if a stale cart slipped through.
		if _, err := tx.Exec(ctx, `
UPDATE products SET quantity = GREATEST(0, quantity - $1) WHERE id = $2`,
			o.Quantity, o.ProductID); err != nil {
			return false, err
		}
	}

	if len(in.CartItemIDs) > 0 {
		if _, err := tx.Exec(ctx, `
DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, in.UserID, in.CartItemIDs); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func scanTransaction(row pgx.Row) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	var csv *string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CheckoutRequestID,
		&t.MerchantRequestID,
		&t.MpesaReceiptNumber,
		&t.PhoneNumber,
		&t.Amount,
		&t.Status,
		&t.TransactionDate,
		&csv,
		&t.OrdersCreated,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if csv != nil && *csv != "" {
		t.CartItemIDs = strings.Split(*csv, ",")
	}
	return &t, nil
}
