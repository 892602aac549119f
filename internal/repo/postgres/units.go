package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/backoffice/internal/domain/unit"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUnitGroupNotFound  = errors.New("unit group not found")
	ErrUnitGroupNameTaken = errors.New("unit group name already exists")
	ErrUnitGroupInUse     = errors.New("unit group still has units")
	ErrUnitNotFound       = errors.New("unit not found")
	ErrUnitExists         = errors.New("unit name or abbreviation already exists in this group")
	ErrUnitInUse          = errors.New("unit used in product specs")
)

type UnitsRepo struct {
	pool *pgxpool.Pool
}

func NewUnitsRepo(pool *pgxpool.Pool) *UnitsRepo {
	return &UnitsRepo{pool: pool}
}

// ListGroups returns every group with its units nested, ordered by name.
func (r *UnitsRepo) ListGroups(ctx context.Context) ([]unit.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.name, u.id, u.unit_group_id, u.name, u.abbreviation, u.factor::text
		 FROM unit_groups g
		 LEFT JOIN units u ON u.unit_group_id = g.id
		 ORDER BY g.name ASC, u.name ASC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	groups := []unit.Group{}
	index := map[int64]int{}

	for rows.Next() {
		var (
			g      unit.Group
			id     *int64
			gid    *int64
			name   *string
			abbrev *string
			factor *string
		)

		if err := rows.Scan(&g.ID, &g.Name, &id, &gid, &name, &abbrev, &factor); err != nil {
			return nil, err
		}

		i, ok := index[g.ID]

		if !ok {
			g.Units = []unit.Unit{}
			groups = append(groups, g)
			i = len(groups) - 1
			index[g.ID] = i
		}

		if id != nil {
			groups[i].Units = append(groups[i].Units, unit.Unit{
				ID:           *id,
				UnitGroupID:  *gid,
				Name:         *name,
				Abbreviation: *abbrev,
				Factor:       *factor,
			})
		}
	}

	return groups, rows.Err()
}

func (r *UnitsRepo) GroupExists(ctx context.Context, id int64) (bool, error) {
	var dummy int64

	err := r.pool.QueryRow(ctx, `SELECT id FROM unit_groups WHERE id = $1`, id).Scan(&dummy)

	if err != nil {
		if isNoRows(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *UnitsRepo) CreateGroup(ctx context.Context, name string) (unit.Group, error) {
	g := unit.Group{Name: name, Units: []unit.Unit{}}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO unit_groups (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&g.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return unit.Group{}, ErrUnitGroupNameTaken
		}

		return unit.Group{}, err
	}

	return g, nil
}

func (r *UnitsRepo) UpdateGroup(ctx context.Context, id int64, name string) (unit.Group, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE unit_groups SET name = $2 WHERE id = $1`, id, name)

	if err != nil {
		if isUniqueViolation(err) {
			return unit.Group{}, ErrUnitGroupNameTaken
		}

		return unit.Group{}, err
	}

	if tag.RowsAffected() == 0 {
		return unit.Group{}, ErrUnitGroupNotFound
	}

	return unit.Group{ID: id, Name: name, Units: []unit.Unit{}}, nil
}

func (r *UnitsRepo) DeleteGroup(ctx context.Context, id int64) error {
	var units int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE unit_group_id = $1`, id).Scan(&units)

	if err != nil {
		return err
	}

	if units > 0 {
		return ErrUnitGroupInUse
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM unit_groups WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUnitGroupNotFound
	}

	return nil
}

func (r *UnitsRepo) CreateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units (unit_group_id, name, abbreviation, factor)
		 VALUES ($1, $2, $3, $4::numeric)
		 RETURNING id`,
		u.UnitGroupID, u.Name, u.Abbreviation, u.Factor,
	).Scan(&u.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return unit.Unit{}, ErrUnitExists
		}
		if isForeignKeyViolation(err) {
			return unit.Unit{}, ErrUnitGroupNotFound
		}

		return unit.Unit{}, err
	}

	return u, nil
}

func (r *UnitsRepo) UpdateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE units
		 SET unit_group_id = $2, name = $3, abbreviation = $4, factor = $5::numeric
		 WHERE id = $1`,
		u.ID, u.UnitGroupID, u.Name, u.Abbreviation, u.Factor,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return unit.Unit{}, ErrUnitExists
		}
		if isForeignKeyViolation(err) {
			return unit.Unit{}, ErrUnitGroupNotFound
		}

		return unit.Unit{}, err
	}

	if tag.RowsAffected() == 0 {
		return unit.Unit{}, ErrUnitNotFound
	}

	return u, nil
}

func (r *UnitsRepo) DeleteUnit(ctx context.Context, id int64) error {
	var specs int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_specs WHERE unit_id = $1`, id).Scan(&specs)

	if err != nil {
		return err
	}

	if specs > 0 {
		return ErrUnitInUse
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUnitNotFound
	}

	return nil
}
