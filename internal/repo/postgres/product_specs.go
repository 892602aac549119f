package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/product"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSpecNotFound = errors.New("product spec not found")
	ErrSpecExists   = errors.New("product spec already exists for this vendor/product combination")
	// ErrSpecReference covers a missing product, vendor, or unit on write.
	ErrSpecReference = errors.New("referenced entity not found")
)

type ProductSpecsRepo struct {
	pool *pgxpool.Pool
}

func NewProductSpecsRepo(pool *pgxpool.Pool) *ProductSpecsRepo {
	return &ProductSpecsRepo{pool: pool}
}

const specColumns = `s.id, s.product_id, p.name, s.vendor_id, v.name,
	s.unit_id, u.name, u.abbreviation,
	s.description, s.case_size, s.unit_size::text, s.brand, COALESCE(s.sku, ''), s.created_at`

const specJoins = `FROM product_specs s
	 JOIN products p ON p.id = s.product_id
	 JOIN vendors v ON v.id = s.vendor_id
	 JOIN units u ON u.id = s.unit_id`

func scanSpec(row interface{ Scan(...any) error }) (product.Spec, error) {
	var s product.Spec

	err := row.Scan(
		&s.ID, &s.ProductID, &s.ProductName, &s.VendorID, &s.VendorName,
		&s.UnitID, &s.UnitName, &s.UnitAbbrev,
		&s.Description, &s.CaseSize, &s.UnitSize, &s.Brand, &s.SKU, &s.CreatedAt,
	)

	return s, err
}

func (r *ProductSpecsRepo) List(ctx context.Context) ([]product.Spec, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+specColumns+` `+specJoins+` ORDER BY s.created_at DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	specs := []product.Spec{}

	for rows.Next() {
		s, err := scanSpec(rows)

		if err != nil {
			return nil, err
		}

		specs = append(specs, s)
	}

	return specs, rows.Err()
}

func (r *ProductSpecsRepo) GetByID(ctx context.Context, id int64) (product.Spec, error) {
	s, err := scanSpec(r.pool.QueryRow(ctx, `SELECT `+specColumns+` `+specJoins+` WHERE s.id = $1`, id))

	if err != nil {
		if isNoRows(err) {
			return product.Spec{}, ErrSpecNotFound
		}

		return product.Spec{}, err
	}

	return s, nil
}

func (r *ProductSpecsRepo) Create(ctx context.Context, s product.Spec) (product.Spec, error) {
	var id int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_specs (product_id, vendor_id, unit_id, description, case_size, unit_size, brand, sku)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, NULLIF($8, ''))
		 RETURNING id`,
		s.ProductID, s.VendorID, s.UnitID, s.Description, s.CaseSize, s.UnitSize, s.Brand, s.SKU,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return product.Spec{}, ErrSpecExists
		}
		if isForeignKeyViolation(err) {
			return product.Spec{}, ErrSpecReference
		}

		return product.Spec{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *ProductSpecsRepo) Update(ctx context.Context, id int64, s product.Spec) (product.Spec, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product_specs
		 SET product_id = $2, vendor_id = $3, unit_id = $4, description = $5,
		     case_size = $6, unit_size = $7::numeric, brand = $8, sku = NULLIF($9, '')
		 WHERE id = $1`,
		id, s.ProductID, s.VendorID, s.UnitID, s.Description, s.CaseSize, s.UnitSize, s.Brand, s.SKU,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return product.Spec{}, ErrSpecExists
		}
		if isForeignKeyViolation(err) {
			return product.Spec{}, ErrSpecReference
		}

		return product.Spec{}, err
	}

	if tag.RowsAffected() == 0 {
		return product.Spec{}, ErrSpecNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ProductSpecsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_specs WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrSpecNotFound
	}

	return nil
}
