package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/vendor"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrVendorNameTaken = errors.New("vendor name already exists")
	ErrVendorInUse     = errors.New("vendor referenced by product specs")
)

type VendorsRepo struct {
	pool *pgxpool.Pool
}

func NewVendorsRepo(pool *pgxpool.Pool) *VendorsRepo {
	return &VendorsRepo{pool: pool}
}

const vendorColumns = `id, name, type, COALESCE(phone, ''), COALESCE(email, ''),
	COALESCE(address, ''), COALESCE(website, ''), COALESCE(account_number, ''), created_at`

func scanVendor(row interface{ Scan(...any) error }) (vendor.Vendor, error) {
	var v vendor.Vendor

	err := row.Scan(&v.ID, &v.Name, &v.Type, &v.Phone, &v.Email, &v.Address, &v.Website, &v.AccountNumber, &v.CreatedAt)

	return v, err
}

func (r *VendorsRepo) List(ctx context.Context) ([]vendor.Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	vendors := []vendor.Vendor{}

	for rows.Next() {
		v, err := scanVendor(rows)

		if err != nil {
			return nil, err
		}

		vendors = append(vendors, v)
	}

	return vendors, rows.Err()
}

func (r *VendorsRepo) Create(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error) {
	created, err := scanVendor(r.pool.QueryRow(ctx,
		`INSERT INTO vendors (name, type, phone, email, address, website, account_number)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING `+vendorColumns,
		v.Name, v.Type, v.Phone, v.Email, v.Address, v.Website, v.AccountNumber,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return vendor.Vendor{}, ErrVendorNameTaken
		}

		return vendor.Vendor{}, err
	}

	return created, nil
}

func (r *VendorsRepo) Update(ctx context.Context, id int64, v vendor.Vendor) (vendor.Vendor, error) {
	updated, err := scanVendor(r.pool.QueryRow(ctx,
		`UPDATE vendors
		 SET name = $2, type = $3, phone = NULLIF($4, ''), email = NULLIF($5, ''),
		     address = NULLIF($6, ''), website = NULLIF($7, ''), account_number = NULLIF($8, '')
		 WHERE id = $1
		 RETURNING `+vendorColumns,
		id, v.Name, v.Type, v.Phone, v.Email, v.Address, v.Website, v.AccountNumber,
	))

	if err != nil {
		if isNoRows(err) {
			return vendor.Vendor{}, ErrVendorNotFound
		}
		if isUniqueViolation(err) {
			return vendor.Vendor{}, ErrVendorNameTaken
		}

		return vendor.Vendor{}, err
	}

	return updated, nil
}

func (r *VendorsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrVendorInUse
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}

	return nil
}
