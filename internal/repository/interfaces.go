package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrCodeExists = errors.New("code already exists")
)

type Pagination struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

// AuditRepository is append-only: entries are written once and never
// mutated. Filtered listing lives in service.AuditQueryService, which builds
// its dynamic queries directly against the pool.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	FindByID(ctx context.Context, id int64) (*model.AuditEntry, error)
}

type ClassificationListFilter struct {
	Level      *int       `json:"level,omitempty"`
	ParentID   *int64     `json:"parent_id,omitempty"`
	Keyword    *string    `json:"keyword,omitempty"`
	Pagination Pagination `json:"pagination"`
}

type ClassificationRepository interface {
	FindByID(ctx context.Context, id int64) (*model.ClassificationNode, error)
	FindByCode(ctx context.Context, code string) (*model.ClassificationNode, error)
	FindAll(ctx context.Context) ([]*model.ClassificationNode, error)
	FindByLevel(ctx context.Context, level int) ([]*model.ClassificationNode, error)
	FindChildren(ctx context.Context, parentID int64) ([]*model.ClassificationNode, error)
	CountChildren(ctx context.Context, parentID int64) (int64, error)
	Search(ctx context.Context, query string) ([]*model.ClassificationNode, error)
	FindExpiredBetween(ctx context.Context, from, to time.Time) ([]*model.ClassificationNode, error)
	List(ctx context.Context, filter ClassificationListFilter) ([]*model.ClassificationNode, int64, error)
	Create(ctx context.Context, node *model.ClassificationNode) error
	Update(ctx context.Context, node *model.ClassificationNode) error
	Delete(ctx context.Context, id int64) error
}

type CodelistListFilter struct {
	Keyword    *string    `json:"keyword,omitempty"`
	Pagination Pagination `json:"pagination"`
}

type VoltageLevelRepository interface {
	FindByID(ctx context.Context, id int64) (*model.VoltageLevel, error)
	FindByCode(ctx context.Context, code string) (*model.VoltageLevel, error)
	List(ctx context.Context, filter CodelistListFilter) ([]*model.VoltageLevel, int64, error)
	Create(ctx context.Context, item *model.VoltageLevel) error
	Update(ctx context.Context, item *model.VoltageLevel) error
	Delete(ctx context.Context, id int64) error
}

type NetworkTypeRepository interface {
	FindByID(ctx context.Context, id int64) (*model.NetworkType, error)
	FindByCode(ctx context.Context, code string) (*model.NetworkType, error)
	List(ctx context.Context, filter CodelistListFilter) ([]*model.NetworkType, int64, error)
	Create(ctx context.Context, item *model.NetworkType) error
	Update(ctx context.Context, item *model.NetworkType) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}
