package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return &auditRepository{pool: pool}
}

var _ repository.AuditRepository = (*auditRepository)(nil)

const auditColumns = `
	id,
	entity_type,
	entity_id,
	entity_code,
	change_type,
	changed_by,
	changed_at,
	old_values,
	new_values
`

// Create runs on its own pool acquisition, never inside a caller-held
// transaction: an audit insert must not extend or roll back the business
// mutation that triggered it.
func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_entries (
			entity_type,
			entity_id,
			entity_code,
			change_type,
			changed_by,
			changed_at,
			old_values,
			new_values
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.pool.QueryRow(
		ctx,
		query,
		entry.EntityType,
		entry.EntityID,
		entry.EntityCode,
		entry.ChangeType,
		entry.ChangedBy,
		entry.ChangedAt,
		entry.OldValues,
		entry.NewValues,
	).Scan(&entry.ID)
}

func (r *auditRepository) FindByID(ctx context.Context, id int64) (*model.AuditEntry, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+auditColumns+` FROM audit_entries WHERE id = $1`,
		id,
	)

	entry, err := scanAuditEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func scanAuditEntry(src scanTarget) (*model.AuditEntry, error) {
	entry := &model.AuditEntry{}

	err := src.Scan(
		&entry.ID,
		&entry.EntityType,
		&entry.EntityID,
		&entry.EntityCode,
		&entry.ChangeType,
		&entry.ChangedBy,
		&entry.ChangedAt,
		&entry.OldValues,
		&entry.NewValues,
	)
	if err != nil {
		return nil, err
	}

	return entry, nil
}
