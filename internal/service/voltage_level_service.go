package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/sanitize"
	"github.com/cermakludek/legislative-enums-sub000/internal/event"
	"github.com/cermakludek/legislative-enums-sub000/internal/metrics"
	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

const voltageLevelEntityType = "VoltageLevel"

var (
	ErrVoltageLevelNotFound     = errors.New("voltage level not found")
	ErrVoltageLevelCodeExists   = errors.New("voltage level code already exists")
	ErrInvalidVoltageLevelInput = errors.New("invalid voltage level input")
)

type VoltageLevelInput struct {
	Code        string  `json:"code"`
	NameCs      string  `json:"name_cs"`
	NameEn      *string `json:"name_en,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

// VoltageLevelService is one of the flat codelist mutation services: code
// uniqueness, CRUD, then the audit entry and change event after the write
// commits.
type VoltageLevelService struct {
	voltageLevelRepo repository.VoltageLevelRepository
	recorder         *AuditRecorder
	bus              *event.Bus
	logger           *zap.Logger
}

func NewVoltageLevelService(
	voltageLevelRepo repository.VoltageLevelRepository,
	recorder *AuditRecorder,
	bus *event.Bus,
	logger *zap.Logger,
) *VoltageLevelService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VoltageLevelService{
		voltageLevelRepo: voltageLevelRepo,
		recorder:         recorder,
		bus:              bus,
		logger:           logger,
	}
}

func (s *VoltageLevelService) Create(ctx context.Context, actor string, input VoltageLevelInput) (*model.VoltageLevel, error) {
	if s.voltageLevelRepo == nil {
		return nil, errors.New("voltage level repository is nil")
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidVoltageLevelInput
	}

	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}

	item := &model.VoltageLevel{
		Code:        code,
		NameCs:      nameCs,
		NameEn:      sanitize.TextPtr(input.NameEn),
		Description: sanitize.MarkdownPtr(input.Description),
		SortOrder:   input.SortOrder,
	}

	if err := s.voltageLevelRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrVoltageLevelCodeExists
		}
		return nil, err
	}

	metrics.IncCodelistMutation(voltageLevelEntityType, string(model.ChangeTypeCreate))

	if err := s.recorder.LogCreate(ctx, actor, voltageLevelEntityType, item.ID, item.Code, voltageLevelSnapshot(item)); err != nil {
		return item, err
	}

	s.publishChange(event.EventCodelistCreated, model.ChangeTypeCreate, item, actor)
	return item, nil
}

func (s *VoltageLevelService) Update(ctx context.Context, actor string, id int64, input VoltageLevelInput) (*model.VoltageLevel, error) {
	if s.voltageLevelRepo == nil {
		return nil, errors.New("voltage level repository is nil")
	}

	existing, err := s.voltageLevelRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVoltageLevelNotFound
		}
		return nil, err
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidVoltageLevelInput
	}

	if !strings.EqualFold(code, existing.Code) {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	oldSnapshot := voltageLevelSnapshot(existing)

	existing.Code = code
	existing.NameCs = nameCs
	existing.NameEn = sanitize.TextPtr(input.NameEn)
	existing.Description = sanitize.MarkdownPtr(input.Description)
	existing.SortOrder = input.SortOrder

	if err := s.voltageLevelRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrVoltageLevelCodeExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVoltageLevelNotFound
		}
		return nil, err
	}

	metrics.IncCodelistMutation(voltageLevelEntityType, string(model.ChangeTypeUpdate))

	if err := s.recorder.LogUpdate(ctx, actor, voltageLevelEntityType, existing.ID, existing.Code, oldSnapshot, voltageLevelSnapshot(existing)); err != nil {
		return existing, err
	}

	s.publishChange(event.EventCodelistUpdated, model.ChangeTypeUpdate, existing, actor)
	return existing, nil
}

func (s *VoltageLevelService) Delete(ctx context.Context, actor string, id int64) error {
	if s.voltageLevelRepo == nil {
		return errors.New("voltage level repository is nil")
	}

	existing, err := s.voltageLevelRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVoltageLevelNotFound
		}
		return err
	}

	if err := s.voltageLevelRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVoltageLevelNotFound
		}
		return err
	}

	metrics.IncCodelistMutation(voltageLevelEntityType, string(model.ChangeTypeDelete))

	if err := s.recorder.LogDelete(ctx, actor, voltageLevelEntityType, existing.ID, existing.Code, voltageLevelSnapshot(existing)); err != nil {
		return err
	}

	s.publishChange(event.EventCodelistDeleted, model.ChangeTypeDelete, existing, actor)
	return nil
}

func (s *VoltageLevelService) FindByID(ctx context.Context, id int64) (*model.VoltageLevel, error) {
	item, err := s.voltageLevelRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVoltageLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *VoltageLevelService) List(ctx context.Context, filter repository.CodelistListFilter) ([]*model.VoltageLevel, int64, error) {
	return s.voltageLevelRepo.List(ctx, filter)
}

func (s *VoltageLevelService) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	existing, err := s.voltageLevelRepo.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrVoltageLevelCodeExists
}

func (s *VoltageLevelService) publishChange(eventName string, changeType model.ChangeType, item *model.VoltageLevel, actor string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(eventName, event.ChangePayload{
		EntityType: voltageLevelEntityType,
		EntityID:   item.ID,
		EntityCode: item.Code,
		ChangeType: string(changeType),
		ChangedBy:  normalizeActor(actor),
		Timestamp:  time.Now().UTC(),
	})
}

func voltageLevelSnapshot(item *model.VoltageLevel) *Snapshot {
	return NewSnapshot().
		Set("code", item.Code).
		Set("nameCs", item.NameCs).
		Set("nameEn", item.NameEn).
		Set("description", item.Description).
		Set("sortOrder", item.SortOrder)
}
