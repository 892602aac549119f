package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/product"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductExists    = errors.New("product already exists for this unit group")
	ErrProductInUse     = errors.New("product referenced by specs")
	ErrCategoryNotFound = errors.New("product category not found")
)

type ProductsRepo struct {
	pool *pgxpool.Pool
}

func NewProductsRepo(pool *pgxpool.Pool) *ProductsRepo {
	return &ProductsRepo{pool: pool}
}

const productColumns = `p.id, p.name, COALESCE(p.name_kr, ''), p.category_id, c.name, p.unit_group_id, g.name`

func scanProduct(row interface{ Scan(...any) error }) (product.Product, error) {
	var p product.Product

	err := row.Scan(&p.ID, &p.Name, &p.NameKR, &p.CategoryID, &p.CategoryName, &p.UnitGroupID, &p.UnitGroupName)

	return p, err
}

func (r *ProductsRepo) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN product_categories c ON c.id = p.category_id
		 JOIN unit_groups g ON g.id = p.unit_group_id
		 ORDER BY p.name ASC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	products := []product.Product{}

	for rows.Next() {
		p, err := scanProduct(rows)

		if err != nil {
			return nil, err
		}

		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *ProductsRepo) GetByID(ctx context.Context, id int64) (product.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN product_categories c ON c.id = p.category_id
		 JOIN unit_groups g ON g.id = p.unit_group_id
		 WHERE p.id = $1`,
		id,
	))

	if err != nil {
		if isNoRows(err) {
			return product.Product{}, ErrProductNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var dummy int64

	err := r.pool.QueryRow(ctx, `SELECT id FROM product_categories WHERE id = $1`, id).Scan(&dummy)

	if err != nil {
		if isNoRows(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *ProductsRepo) Create(ctx context.Context, name, nameKR string, categoryID, unitGroupID int64) (product.Product, error) {
	var id int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, name_kr, category_id, unit_group_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4)
		 RETURNING id`,
		name, nameKR, categoryID, unitGroupID,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return product.Product{}, ErrProductExists
		}

		return product.Product{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *ProductsRepo) Update(ctx context.Context, id int64, name, nameKR string, categoryID, unitGroupID int64) (product.Product, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, name_kr = NULLIF($3, ''), category_id = $4, unit_group_id = $5
		 WHERE id = $1`,
		id, name, nameKR, categoryID, unitGroupID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return product.Product{}, ErrProductExists
		}

		return product.Product{}, err
	}

	if tag.RowsAffected() == 0 {
		return product.Product{}, ErrProductNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ProductsRepo) Delete(ctx context.Context, id int64) error {
	var specs int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_specs WHERE product_id = $1`, id).Scan(&specs)

	if err != nil {
		return err
	}

	if specs > 0 {
		return ErrProductInUse
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductInUse
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}
