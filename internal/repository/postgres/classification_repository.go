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

type classificationRepository struct {
	pool *pgxpool.Pool
}

func NewClassificationRepository(pool *pgxpool.Pool) repository.ClassificationRepository {
	return &classificationRepository{pool: pool}
}

var _ repository.ClassificationRepository = (*classificationRepository)(nil)

const classificationColumns = `
	id,
	code,
	name_cs,
	name_en,
	level,
	parent_id,
	valid_from,
	valid_to,
	sort_order,
	created_at,
	updated_at
`

func (r *classificationRepository) FindByID(ctx context.Context, id int64) (*model.ClassificationNode, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+classificationColumns+` FROM classification_nodes WHERE id = $1`,
		id,
	)

	node, err := scanClassificationNode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return node, nil
}

func (r *classificationRepository) FindByCode(ctx context.Context, code string) (*model.ClassificationNode, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+classificationColumns+` FROM classification_nodes WHERE code = $1`,
		code,
	)

	node, err := scanClassificationNode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return node, nil
}

func (r *classificationRepository) FindAll(ctx context.Context) ([]*model.ClassificationNode, error) {
	return r.queryNodes(
		ctx,
		`SELECT `+classificationColumns+` FROM classification_nodes ORDER BY code`,
	)
}

func (r *classificationRepository) FindByLevel(ctx context.Context, level int) ([]*model.ClassificationNode, error) {
	return r.queryNodes(
		ctx,
		`SELECT `+classificationColumns+` FROM classification_nodes WHERE level = $1 ORDER BY code`,
		level,
	)
}

func (r *classificationRepository) FindChildren(ctx context.Context, parentID int64) ([]*model.ClassificationNode, error) {
	return r.queryNodes(
		ctx,
		`SELECT `+classificationColumns+` FROM classification_nodes WHERE parent_id = $1 ORDER BY code`,
		parentID,
	)
}

func (r *classificationRepository) CountChildren(ctx context.Context, parentID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM classification_nodes WHERE parent_id = $1`,
		parentID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *classificationRepository) Search(ctx context.Context, query string) ([]*model.ClassificationNode, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	return r.queryNodes(
		ctx,
		`SELECT `+classificationColumns+`
		   FROM classification_nodes
		  WHERE code ILIKE $1 OR name_cs ILIKE $1 OR name_en ILIKE $1
		  ORDER BY code`,
		pattern,
	)
}

func (r *classificationRepository) FindExpiredBetween(ctx context.Context, from, to time.Time) ([]*model.ClassificationNode, error) {
	return r.queryNodes(
		ctx,
		`SELECT `+classificationColumns+`
		   FROM classification_nodes
		  WHERE valid_to IS NOT NULL AND valid_to >= $1 AND valid_to < $2
		  ORDER BY code`,
		from,
		to,
	)
}

func (r *classificationRepository) List(ctx context.Context, filter repository.ClassificationListFilter) ([]*model.ClassificationNode, int64, error) {
	limit, offset := normalizePagination(filter.Pagination)

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Level != nil {
		args = append(args, *filter.Level)
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Keyword)+"%")
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name_cs ILIKE $%d OR name_en ILIKE $%d)", len(args), len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classification_nodes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + classificationColumns + ` FROM classification_nodes` + where +
		fmt.Sprintf(" ORDER BY code LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	nodes, err := r.queryNodes(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return nodes, total, nil
}

func (r *classificationRepository) Create(ctx context.Context, node *model.ClassificationNode) error {
	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now

	query := `
		INSERT INTO classification_nodes (
			code,
			name_cs,
			name_en,
			level,
			parent_id,
			valid_from,
			valid_to,
			sort_order,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		node.Code,
		node.NameCs,
		node.NameEn,
		node.Level,
		node.ParentID,
		node.ValidFrom,
		node.ValidTo,
		node.SortOrder,
		node.CreatedAt,
		node.UpdatedAt,
	).Scan(&node.ID)
	if isUniqueViolation(err) {
		return repository.ErrCodeExists
	}
	return err
}

func (r *classificationRepository) Update(ctx context.Context, node *model.ClassificationNode) error {
	node.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE classification_nodes
		   SET code = $1,
		       name_cs = $2,
		       name_en = $3,
		       level = $4,
		       parent_id = $5,
		       valid_from = $6,
		       valid_to = $7,
		       sort_order = $8,
		       updated_at = $9
		 WHERE id = $10
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		node.Code,
		node.NameCs,
		node.NameEn,
		node.Level,
		node.ParentID,
		node.ValidFrom,
		node.ValidTo,
		node.SortOrder,
		node.UpdatedAt,
		node.ID,
	)
	if isUniqueViolation(err) {
		return repository.ErrCodeExists
	}
	if err != nil {
		return err
	}

	return ensureAffected(tag)
}

func (r *classificationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classification_nodes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *classificationRepository) queryNodes(ctx context.Context, query string, args ...any) ([]*model.ClassificationNode, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]*model.ClassificationNode, 0, 16)
	for rows.Next() {
		node, scanErr := scanClassificationNode(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nodes, nil
}

func scanClassificationNode(src scanTarget) (*model.ClassificationNode, error) {
	node := &model.ClassificationNode{}

	err := src.Scan(
		&node.ID,
		&node.Code,
		&node.NameCs,
		&node.NameEn,
		&node.Level,
		&node.ParentID,
		&node.ValidFrom,
		&node.ValidTo,
		&node.SortOrder,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return node, nil
}
