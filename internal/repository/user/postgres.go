package user

import (
	"context"
	"errors"
	"time"

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

const userColumns = `id::text, username, email, password_hash, role, verified, banned,
secondary_email, mpesa_number, payment_preference, location_string, wallet_balance`

func (r *postgresRepo) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	const q = `
INSERT INTO users (username, email, password_hash, role, mpesa_number, location_string)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, q, in.Username, in.Email, in.PasswordHash, string(in.Role), in.MpesaNumber, in.Location)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, args ...interface{}) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresRepo) GetAll(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY username ASC`)
}

func (r *postgresRepo) GetPendingVendors(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `
SELECT `+userColumns+`
FROM users
WHERE role = 'Vendor' AND verified = FALSE AND banned = FALSE
ORDER BY username ASC`)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *postgresRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
}

func (r *postgresRepo) UpdateVerification(ctx context.Context, id string, verified bool) error {
	return r.exec(ctx, `UPDATE users SET verified = $1 WHERE id = $2`, verified, id)
}

func (r *postgresRepo) SetBanned(ctx context.Context, id string, banned bool) error {
	return r.exec(ctx, `UPDATE users SET banned = $1 WHERE id = $2`, banned, id)
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) error {
	const q = `
UPDATE users SET
	username = COALESCE($1, username),
	email = COALESCE($2, email),
	secondary_email = COALESCE($3, secondary_email),
	mpesa_number = COALESCE($4, mpesa_number),
	payment_preference = COALESCE($5, payment_preference),
	location_string = COALESCE($6, location_string)
WHERE id = $7`
	cmd, err := r.pool.Exec(ctx, q, in.Username, in.Email, in.SecondaryEmail, in.MpesaNumber, in.PaymentPreference, in.Location, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *postgresRepo) WalletBalance(ctx context.Context, id string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return balance, err
}

// DebitWallet atomically deducts amount and returns the new balance. The
// balance check happens inside the UPDATE so concurrent withdrawals cannot
// overdraw.
func (r *postgresRepo) DebitWallet(ctx context.Context, id string, amount float64) (float64, error) {
	const q = `
UPDATE users
SET wallet_balance = wallet_balance - $1
WHERE id = $2 AND wallet_balance >= $1
RETURNING wallet_balance`
	var balance float64
	err := r.pool.QueryRow(ctx, q, amount, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.Validationf("insufficient wallet balance")
	}
	return balance, err
}

func (r *postgresRepo) CreateResetCode(ctx context.Context, username, code string, expiresAt time.Time) error {
	return r.exec(ctx, `
INSERT INTO password_reset_codes (username, verification_code, expires_at)
VALUES ($1, $2, $3)`, username, code, expiresAt)
}

// ConsumeResetCode marks an unexpired, unused code as used. ErrNotFound means
// the code is wrong, expired, or already consumed.
func (r *postgresRepo) ConsumeResetCode(ctx context.Context, username, code string) error {
	const q = `
UPDATE password_reset_codes
SET used = TRUE
WHERE username = $1 AND verification_code = $2 AND used = FALSE AND expires_at > now()`
	cmd, err := r.pool.Exec(ctx, q, username, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) exec(ctx context.Context, q string, args ...interface{}) error {
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.Verified,
		&u.Banned,
		&u.SecondaryEmail,
		&u.MpesaNumber,
		&u.PaymentPreference,
		&u.Location,
		&u.WalletBalance,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
