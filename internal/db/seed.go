package db

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type permissionSeed struct {
	key  string
	name string
}

type roleSeed struct {
	key         string
	name        string
	description string
	permissions []string
}

var permissionSeeds = []permissionSeed{
	{"USER_READ", "Read users"},
	{"USER_WRITE", "Manage users"},
	{"ROLE_READ", "Read roles"},
	{"ROLE_WRITE", "Manage roles"},
	{"VENDOR_READ", "Read vendors"},
	{"VENDOR_WRITE", "Manage vendors"},
	{"PRODUCT_READ", "Read products"},
	{"PRODUCT_WRITE", "Manage products"},
	{"INVOICE_READ", "Read invoices"},
	{"INVOICE_WRITE", "Manage invoices"},
	{"EXPENSE_READ", "Read expenses"},
	{"EXPENSE_WRITE", "Manage expenses"},
	{"UNIT_READ", "Read units"},
	{"UNIT_WRITE", "Manage units"},
}

var roleSeeds = []roleSeed{
	{
		key:         "ADMIN",
		name:        "Administrator",
		description: "Full access to all features",
		permissions: allPermissionKeys(),
	},
	{
		key:         "MANAGER",
		name:        "Manager",
		description: "Manage catalogs and financial entries",
		permissions: []string{
			"VENDOR_READ", "VENDOR_WRITE",
			"PRODUCT_READ", "PRODUCT_WRITE",
			"INVOICE_READ", "INVOICE_WRITE",
			"EXPENSE_READ", "EXPENSE_WRITE",
			"UNIT_READ", "UNIT_WRITE",
		},
	},
	{
		key:         "STAFF",
		name:        "Staff",
		description: "Maintain transactions and view catalogs",
		permissions: []string{
			"VENDOR_READ", "PRODUCT_READ",
			"INVOICE_READ", "INVOICE_WRITE",
			"EXPENSE_READ", "EXPENSE_WRITE",
			"UNIT_READ",
		},
	},
	{
		key:         "READONLY",
		name:        "Read Only",
		description: "View-only access",
		permissions: []string{
			"USER_READ", "ROLE_READ",
			"VENDOR_READ", "PRODUCT_READ",
			"INVOICE_READ", "EXPENSE_READ",
			"UNIT_READ",
		},
	},
}

type unitSeed struct {
	name   string
	abbrev string
	factor string
}

// factors express each unit in the group's base unit
var unitGroupSeeds = map[string][]unitSeed{
	"Weight": {
		{"Kilogram", "kg", "1"},
		{"Gram", "g", "0.001"},
		{"Pound", "lb", "0.453592"},
		{"Ounce", "oz", "0.0283495"},
	},
	"Volume": {
		{"Liter", "L", "1"},
		{"Milliliter", "mL", "0.001"},
		{"Fluid Ounce", "fl oz", "0.0295735"},
		{"Gallon", "gal", "3.78541"},
	},
}

var categorySeeds = []string{
	"Produce",
	"Meat",
	"Seafood",
	"Dairy",
	"Dry Goods",
	"Beverage",
	"Supplies",
}

func allPermissionKeys() []string {
	keys := make([]string, len(permissionSeeds))
	for i, p := range permissionSeeds {
		keys[i] = p.key
	}
	return keys
}

// EnsureSeedData inserts the permission catalog, the built-in roles, and
// their links. Idempotent.
func EnsureSeedData(ctx context.Context, pool *pgxpool.Pool) error {
	for _, p := range permissionSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO permissions (key, name) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`,
			p.key, p.name,
		)

		if err != nil {
			return err
		}
	}

	for _, r := range roleSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO roles (key, name, description) VALUES ($1, $2, $3)
			 ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`,
			r.key, r.name, r.description,
		)

		if err != nil {
			return err
		}

		for _, permKey := range r.permissions {
			_, err := pool.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id)
				 SELECT r.id, p.id FROM roles r, permissions p
				 WHERE r.key = $1 AND p.key = $2
				 ON CONFLICT DO NOTHING`,
				r.key, permKey,
			)

			if err != nil {
				return err
			}
		}
	}

	for groupName, units := range unitGroupSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO unit_groups (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			groupName,
		)

		if err != nil {
			return err
		}

		for _, u := range units {
			_, err := pool.Exec(ctx,
				`INSERT INTO units (unit_group_id, name, abbreviation, factor)
				 SELECT g.id, $2, $3, $4::numeric FROM unit_groups g WHERE g.name = $1
				 ON CONFLICT DO NOTHING`,
				groupName, u.name, u.abbrev, u.factor,
			)

			if err != nil {
				return err
			}
		}
	}

	for _, name := range categorySeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// EnsureAdminUser bootstraps the first login from ADMIN_EMAIL/ADMIN_PASSWORD.
// A no-op when the variables are unset or the user already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, name, password_hash, role_id)
		 SELECT $1, $2, $3, r.id FROM roles r WHERE r.key = 'ADMIN'`,
		cfg.AdminEmail, cfg.AdminName, hash,
	)

	return err
}
