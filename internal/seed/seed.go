package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type userSeed struct {
	Username string
	Email    string
	Password string
	Role     string
	Verified bool
	Location string
}

type productSeed struct {
	Name        string
	Price       float64
	Category    string
	Description string
	Quantity    int
	Vendor      string
}

// Apply inserts demo accounts and produce listings for manual testing.
// It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	users := []userSeed{
		{Username: "admin", Email: "admin@farmmarket.local", Password: "admin-password", Role: "Admin", Verified: true, Location: "Nairobi"},
		{Username: "mama-mboga", Email: "wanjiku@farmmarket.local", Password: "vendor-password", Role: "Vendor", Verified: true, Location: "Nakuru"},
		{Username: "kilimo-fresh", Email: "otieno@farmmarket.local", Password: "vendor-password", Role: "Vendor", Verified: true, Location: "Kisumu"},
		{Username: "buyer-jane", Email: "jane@farmmarket.local", Password: "customer-password", Role: "Customer", Verified: true, Location: "Nairobi"},
	}
	for _, u := range users {
		if err := upsertUser(ctx, pool, u); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Username, err)
		}
	}

	products := []productSeed{
		{Name: "Sukuma Wiki Bundle", Price: 50, Category: "Vegetables", Description: "Fresh collard greens, picked this morning", Quantity: 120, Vendor: "mama-mboga"},
		{Name: "Red Onions 1kg", Price: 130, Category: "Vegetables", Description: "Dry red onions from Nakuru", Quantity: 80, Vendor: "mama-mboga"},
		{Name: "Tilapia Whole", Price: 450, Category: "Fish", Description: "Lake Victoria tilapia, cleaned", Quantity: 30, Vendor: "kilimo-fresh"},
		{Name: "Maize Flour 2kg", Price: 165, Category: "Cereals", Description: "Stone-ground maize flour", Quantity: 200, Vendor: "kilimo-fresh"},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u userSeed) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (username, email, password_hash, role, verified, location_string)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (username) DO UPDATE
SET email = EXCLUDED.email,
    role = EXCLUDED.role,
    verified = EXCLUDED.verified,
    location_string = EXCLUDED.location_string
`
	_, err = pool.Exec(ctx, q, u.Username, u.Email, string(hash), u.Role, u.Verified, u.Location)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, price, category, description, quantity, vendor_id)
SELECT $1, $2, $3, $4, $5, id FROM users WHERE username = $6
ON CONFLICT DO NOTHING
`
	_, err := pool.Exec(ctx, q, p.Name, p.Price, p.Category, p.Description, p.Quantity, p.Vendor)
	return err
}
