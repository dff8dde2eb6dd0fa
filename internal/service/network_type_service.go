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

const networkTypeEntityType = "NetworkType"

var (
	ErrNetworkTypeNotFound     = errors.New("network type not found")
	ErrNetworkTypeCodeExists   = errors.New("network type code already exists")
	ErrInvalidNetworkTypeInput = errors.New("invalid network type input")
)

type NetworkTypeInput struct {
	Code        string  `json:"code"`
	NameCs      string  `json:"name_cs"`
	NameEn      *string `json:"name_en,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

type NetworkTypeService struct {
	networkTypeRepo repository.NetworkTypeRepository
	recorder        *AuditRecorder
	bus             *event.Bus
	logger          *zap.Logger
}

func NewNetworkTypeService(
	networkTypeRepo repository.NetworkTypeRepository,
	recorder *AuditRecorder,
	bus *event.Bus,
	logger *zap.Logger,
) *NetworkTypeService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NetworkTypeService{
		networkTypeRepo: networkTypeRepo,
		recorder:        recorder,
		bus:             bus,
		logger:          logger,
	}
}

func (s *NetworkTypeService) Create(ctx context.Context, actor string, input NetworkTypeInput) (*model.NetworkType, error) {
	if s.networkTypeRepo == nil {
		return nil, errors.New("network type repository is nil")
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidNetworkTypeInput
	}

	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}

	item := &model.NetworkType{
		Code:        code,
		NameCs:      nameCs,
		NameEn:      sanitize.TextPtr(input.NameEn),
		Description: sanitize.MarkdownPtr(input.Description),
		SortOrder:   input.SortOrder,
	}

	if err := s.networkTypeRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrNetworkTypeCodeExists
		}
		return nil, err
	}

	metrics.IncCodelistMutation(networkTypeEntityType, string(model.ChangeTypeCreate))

	if err := s.recorder.LogCreate(ctx, actor, networkTypeEntityType, item.ID, item.Code, networkTypeSnapshot(item)); err != nil {
		return item, err
	}

	s.publishChange(event.EventCodelistCreated, model.ChangeTypeCreate, item, actor)
	return item, nil
}

func (s *NetworkTypeService) Update(ctx context.Context, actor string, id int64, input NetworkTypeInput) (*model.NetworkType, error) {
	if s.networkTypeRepo == nil {
		return nil, errors.New("network type repository is nil")
	}

	existing, err := s.networkTypeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNetworkTypeNotFound
		}
		return nil, err
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidNetworkTypeInput
	}

	if !strings.EqualFold(code, existing.Code) {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	oldSnapshot := networkTypeSnapshot(existing)

	existing.Code = code
	existing.NameCs = nameCs
	existing.NameEn = sanitize.TextPtr(input.NameEn)
	existing.Description = sanitize.MarkdownPtr(input.Description)
	existing.SortOrder = input.SortOrder

	if err := s.networkTypeRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrNetworkTypeCodeExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNetworkTypeNotFound
		}
		return nil, err
	}

	metrics.IncCodelistMutation(networkTypeEntityType, string(model.ChangeTypeUpdate))

	if err := s.recorder.LogUpdate(ctx, actor, networkTypeEntityType, existing.ID, existing.Code, oldSnapshot, networkTypeSnapshot(existing)); err != nil {
		return existing, err
	}

	s.publishChange(event.EventCodelistUpdated, model.ChangeTypeUpdate, existing, actor)
	return existing, nil
}

func (s *NetworkTypeService) Delete(ctx context.Context, actor string, id int64) error {
	if s.networkTypeRepo == nil {
		return errors.New("network type repository is nil")
	}

	existing, err := s.networkTypeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNetworkTypeNotFound
		}
		return err
	}

	if err := s.networkTypeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNetworkTypeNotFound
		}
		return err
	}

	metrics.IncCodelistMutation(networkTypeEntityType, string(model.ChangeTypeDelete))

	if err := s.recorder.LogDelete(ctx, actor, networkTypeEntityType, existing.ID, existing.Code, networkTypeSnapshot(existing)); err != nil {
		return err
	}

	s.publishChange(event.EventCodelistDeleted, model.ChangeTypeDelete, existing, actor)
	return nil
}

func (s *NetworkTypeService) FindByID(ctx context.Context, id int64) (*model.NetworkType, error) {
	item, err := s.networkTypeRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNetworkTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *NetworkTypeService) List(ctx context.Context, filter repository.CodelistListFilter) ([]*model.NetworkType, int64, error) {
	return s.networkTypeRepo.List(ctx, filter)
}

func (s *NetworkTypeService) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	existing, err := s.networkTypeRepo.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrNetworkTypeCodeExists
}

func (s *NetworkTypeService) publishChange(eventName string, changeType model.ChangeType, item *model.NetworkType, actor string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(eventName, event.ChangePayload{
		EntityType: networkTypeEntityType,
		EntityID:   item.ID,
		EntityCode: item.Code,
		ChangeType: string(changeType),
		ChangedBy:  normalizeActor(actor),
		Timestamp:  time.Now().UTC(),
	})
}

func networkTypeSnapshot(item *model.NetworkType) *Snapshot {
	return NewSnapshot().
		Set("code", item.Code).
		Set("nameCs", item.NameCs).
		Set("nameEn", item.NameEn).
		Set("description", item.Description).
		Set("sortOrder", item.SortOrder)
}
