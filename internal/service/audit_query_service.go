package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

const (
	auditListDefaultPage = 1
	auditListDefaultSize = 20
	auditListMaxPageSize = 200
)

// AuditQueryFilter holds the optional audit-list filters. Equality filters
// combine with AND; Search adds one case-insensitive substring group matched
// with OR across entity type, code, author and both serialized snapshots,
// ANDed against the rest.
//
// SortBy and SortOrder are accepted for API compatibility and ignored: the
// audit list is always ordered changed_at descending.
type AuditQueryFilter struct {
	EntityType *string           `json:"entity_type,omitempty"`
	ChangeType *model.ChangeType `json:"change_type,omitempty"`
	ChangedBy  *string           `json:"changed_by,omitempty"`
	Search     *string           `json:"search,omitempty"`
	SortBy     *string           `json:"sort_by,omitempty"`
	SortOrder  *string           `json:"sort_order,omitempty"`
}

// AuditQueryService is the read side of the audit log for operator review.
// It builds its dynamic filter queries directly against the pool, the same
// way writes go through AuditRecorder only.
type AuditQueryService struct {
	auditRepo repository.AuditRepository
	pool      *pgxpool.Pool
}

func NewAuditQueryService(auditRepo repository.AuditRepository, pool *pgxpool.Pool) *AuditQueryService {
	return &AuditQueryService{
		auditRepo: auditRepo,
		pool:      pool,
	}
}

func (s *AuditQueryService) FindWithFilters(
	ctx context.Context,
	filter AuditQueryFilter,
	page, pageSize int,
) ([]*model.AuditEntry, int64, error) {
	if s.pool == nil {
		return nil, 0, errors.New("database pool is nil")
	}

	page, pageSize = normalizeAuditPagination(page, pageSize)
	conditions, args := buildAuditConditions(filter)

	baseQuery := `SELECT id, entity_type, entity_id, entity_code, change_type, changed_by, changed_at, old_values, new_values FROM audit_entries`
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	queryArgs := append([]any{}, args...)
	queryArgs = append(queryArgs, pageSize, (page-1)*pageSize)
	query := baseQuery + fmt.Sprintf(" ORDER BY changed_at DESC LIMIT $%d OFFSET $%d", len(queryArgs)-1, len(queryArgs))

	rows, err := s.pool.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*model.AuditEntry, 0, pageSize)
	for rows.Next() {
		entry := &model.AuditEntry{}
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.EntityCode,
			&entry.ChangeType,
			&entry.ChangedBy,
			&entry.ChangedAt,
			&entry.OldValues,
			&entry.NewValues,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM audit_entries`
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// FindByID returns nil without error for a missing id; only storage
// failures surface. The caller decides how to react to absence.
func (s *AuditQueryService) FindByID(ctx context.Context, id int64) (*model.AuditEntry, error) {
	if s.auditRepo == nil {
		return nil, errors.New("audit repository is nil")
	}

	entry, err := s.auditRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *AuditQueryService) GetDistinctEntityTypes(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, "entity_type")
}

func (s *AuditQueryService) GetDistinctChangedBy(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, "changed_by")
}

func (s *AuditQueryService) distinctColumn(ctx context.Context, column string) ([]string, error) {
	if s.pool == nil {
		return nil, errors.New("database pool is nil")
	}

	rows, err := s.pool.Query(
		ctx,
		`SELECT DISTINCT `+column+` FROM audit_entries ORDER BY `+column,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0, 16)
	for rows.Next() {
		var value string
		if scanErr := rows.Scan(&value); scanErr != nil {
			return nil, scanErr
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

// buildAuditConditions turns the optional filters into SQL predicates with
// positional arguments. Kept as a pure function so the predicate builder is
// testable without a database.
func buildAuditConditions(filter AuditQueryFilter) ([]string, []any) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.EntityType != nil && strings.TrimSpace(*filter.EntityType) != "" {
		args = append(args, strings.TrimSpace(*filter.EntityType))
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.ChangeType != nil && strings.TrimSpace(string(*filter.ChangeType)) != "" {
		args = append(args, strings.TrimSpace(string(*filter.ChangeType)))
		conditions = append(conditions, fmt.Sprintf("change_type = $%d", len(args)))
	}
	if filter.ChangedBy != nil && strings.TrimSpace(*filter.ChangedBy) != "" {
		args = append(args, strings.TrimSpace(*filter.ChangedBy))
		conditions = append(conditions, fmt.Sprintf("changed_by = $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(entity_type ILIKE $%d OR entity_code ILIKE $%d OR changed_by ILIKE $%d OR old_values ILIKE $%d OR new_values ILIKE $%d)",
			n, n, n, n, n,
		))
	}

	return conditions, args
}

func normalizeAuditPagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = auditListDefaultPage
	}
	if pageSize <= 0 {
		pageSize = auditListDefaultSize
	}
	if pageSize > auditListMaxPageSize {
		pageSize = auditListMaxPageSize
	}
	return page, pageSize
}
