package report

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

const reportColumns = `vr.id::text, vr.customer_id::text, vr.vendor_id::text, vr.product_id::text,
vr.report_type, vr.description, vr.status, vr.admin_notes, vr.created_at, vr.updated_at,
cu.username, vu.username, p.name`

const reportJoin = `
FROM vendor_reports vr
JOIN users cu ON vr.customer_id = cu.id
JOIN users vu ON vr.vendor_id = vu.id
LEFT JOIN products p ON vr.product_id = p.id`

func (r *postgresRepo) Create(ctx context.Context, in CreateReportInput) (*domain.VendorReport, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO vendor_reports (customer_id, vendor_id, product_id, report_type, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text`,
		in.CustomerID, in.VendorID, in.ProductID, in.ReportType, in.Description).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.VendorReport, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+reportJoin+` WHERE vr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.VendorReport, error) {
	return r.list(ctx, `SELECT `+reportColumns+reportJoin+` ORDER BY vr.created_at DESC`)
}

func (r *postgresRepo) ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorReport, error) {
	return r.list(ctx, `
SELECT `+reportColumns+reportJoin+`
WHERE vr.vendor_id = $1
ORDER BY vr.created_at DESC`, vendorID)
}

func (r *postgresRepo) OpenCount(ctx context.Context, vendorID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM vendor_reports
WHERE vendor_id = $1 AND status <> 'dismissed'`, vendorID).Scan(&n)
	return n, err
}

func (r *postgresRepo) Resolve(ctx context.Context, id, status string, adminNotes *string) (*domain.VendorReport, error) {
	const q = `
UPDATE vendor_reports
SET status = $1, admin_notes = COALESCE($2, admin_notes), updated_at = now()
WHERE id = $3
RETURNING id::text`
	var returned string
	if err := r.pool.QueryRow(ctx, q, status, adminNotes, id).Scan(&returned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, returned)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.VendorReport, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.VendorReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*domain.VendorReport, error) {
	var rep domain.VendorReport
	if err := row.Scan(
		&rep.ID,
		&rep.CustomerID,
		&rep.VendorID,
		&rep.ProductID,
		&rep.ReportType,
		&rep.Description,
		&rep.Status,
		&rep.AdminNotes,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&rep.CustomerUsername,
		&rep.VendorUsername,
		&rep.ProductName,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}
