package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

type voltageLevelRepository struct {
	pool *pgxpool.Pool
}

func NewVoltageLevelRepository(pool *pgxpool.Pool) repository.VoltageLevelRepository {
	return &voltageLevelRepository{pool: pool}
}

var _ repository.VoltageLevelRepository = (*voltageLevelRepository)(nil)

const voltageLevelColumns = `
	id,
	code,
	name_cs,
	name_en,
	description,
	sort_order,
	created_at,
	updated_at
`

func (r *voltageLevelRepository) FindByID(ctx context.Context, id int64) (*model.VoltageLevel, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+voltageLevelColumns+` FROM voltage_levels WHERE id = $1`,
		id,
	)

	item, err := scanVoltageLevel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *voltageLevelRepository) FindByCode(ctx context.Context, code string) (*model.VoltageLevel, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+voltageLevelColumns+` FROM voltage_levels WHERE code = $1`,
		code,
	)

	item, err := scanVoltageLevel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *voltageLevelRepository) List(ctx context.Context, filter repository.CodelistListFilter) ([]*model.VoltageLevel, int64, error) {
	limit, offset := normalizePagination(filter.Pagination)

	args := make([]any, 0, 3)
	where := ""

	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Keyword)+"%")
		where = fmt.Sprintf(" WHERE code ILIKE $%d OR name_cs ILIKE $%d OR name_en ILIKE $%d", len(args), len(args), len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM voltage_levels`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + voltageLevelColumns + ` FROM voltage_levels` + where +
		fmt.Sprintf(" ORDER BY sort_order, code LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*model.VoltageLevel, 0, limit)
	for rows.Next() {
		item, scanErr := scanVoltageLevel(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *voltageLevelRepository) Create(ctx context.Context, item *model.VoltageLevel) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query := `
		INSERT INTO voltage_levels (code, name_cs, name_en, description, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		item.Code,
		item.NameCs,
		item.NameEn,
		item.Description,
		item.SortOrder,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)
	if isUniqueViolation(err) {
		return repository.ErrCodeExists
	}
	return err
}

func (r *voltageLevelRepository) Update(ctx context.Context, item *model.VoltageLevel) error {
	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE voltage_levels
		   SET code = $1,
		       name_cs = $2,
		       name_en = $3,
		       description = $4,
		       sort_order = $5,
		       updated_at = $6
		 WHERE id = $7
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		item.Code,
		item.NameCs,
		item.NameEn,
		item.Description,
		item.SortOrder,
		item.UpdatedAt,
		item.ID,
	)
	if isUniqueViolation(err) {
		return repository.ErrCodeExists
	}
	if err != nil {
		return err
	}

	return ensureAffected(tag)
}

func (r *voltageLevelRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM voltage_levels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func scanVoltageLevel(src scanTarget) (*model.VoltageLevel, error) {
	item := &model.VoltageLevel{}

	err := src.Scan(
		&item.ID,
		&item.Code,
		&item.NameCs,
		&item.NameEn,
		&item.Description,
		&item.SortOrder,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return item, nil
}
