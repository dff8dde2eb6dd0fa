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

const classificationEntityType = "Classification"

var (
	ErrClassificationNotFound     = errors.New("classification node not found")
	ErrClassificationCodeExists   = errors.New("classification code already exists")
	ErrInvalidClassificationInput = errors.New("invalid classification input")
	ErrInvalidLevel               = errors.New("classification level must be between 1 and 4")
	ErrParentRequired             = errors.New("parent is required below the top level")
	ErrParentNotFound             = errors.New("parent classification node not found")
	ErrHasChildren                = errors.New("classification node still has children")
)

type ClassificationInput struct {
	Code      string     `json:"code"`
	NameCs    string     `json:"name_cs"`
	NameEn    *string    `json:"name_en,omitempty"`
	Level     int        `json:"level"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
	SortOrder int        `json:"sort_order"`
}

// ClassificationService owns the 4-level building-classification tree: level
// and parent legality on writes, the children guard on deletes, and the
// tree-shaped reads. Nodes are kept flat and keyed by id; parent/child
// structure is derived by index lookup when a tree read asks for it, never
// held as live object references.
type ClassificationService struct {
	classificationRepo repository.ClassificationRepository
	recorder           *AuditRecorder
	bus                *event.Bus
	logger             *zap.Logger
}

func NewClassificationService(
	classificationRepo repository.ClassificationRepository,
	recorder *AuditRecorder,
	bus *event.Bus,
	logger *zap.Logger,
) *ClassificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ClassificationService{
		classificationRepo: classificationRepo,
		recorder:           recorder,
		bus:                bus,
		logger:             logger,
	}
}

// ValidateAndResolveParent applies the level/parent legality rules and
// returns the parent id to persist. A parent supplied for a level-1 node is
// silently cleared, not rejected. For deeper levels the parent must exist.
//
// The parent's own level is deliberately not checked against level-1: the
// admin UI picks parents from GetPossibleParents, which only offers nodes of
// the level above, so correctness is a caller convention rather than a hard
// invariant here.
func (s *ClassificationService) ValidateAndResolveParent(ctx context.Context, level int, parentID *int64) (*int64, error) {
	if level < model.ClassificationMinLevel || level > model.ClassificationMaxLevel {
		return nil, ErrInvalidLevel
	}

	if level == model.ClassificationMinLevel {
		return nil, nil
	}

	if parentID == nil {
		return nil, ErrParentRequired
	}

	if _, err := s.classificationRepo.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	return parentID, nil
}

// GetPossibleParents returns the nodes a new node of the given level may
// attach to: everything one level up, ordered by code. Empty for level 1.
func (s *ClassificationService) GetPossibleParents(ctx context.Context, level int) ([]*model.ClassificationNode, error) {
	if level <= model.ClassificationMinLevel {
		return []*model.ClassificationNode{}, nil
	}

	return s.classificationRepo.FindByLevel(ctx, level-1)
}

// GuardDeletion fails with ErrHasChildren when the node still has direct
// children. Deletion never cascades.
//
// This is a plain read-then-act check: a child inserted between the count
// and the delete slips through. The window is accepted for now; see the
// delete path.
func (s *ClassificationService) GuardDeletion(ctx context.Context, nodeID int64) error {
	count, err := s.classificationRepo.CountChildren(ctx, nodeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasChildren
	}
	return nil
}

func (s *ClassificationService) Create(ctx context.Context, actor string, input ClassificationInput) (*model.ClassificationNode, error) {
	if s.classificationRepo == nil {
		return nil, errors.New("classification repository is nil")
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidClassificationInput
	}

	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}

	parentID, err := s.ValidateAndResolveParent(ctx, input.Level, input.ParentID)
	if err != nil {
		return nil, err
	}

	node := &model.ClassificationNode{
		Code:      code,
		NameCs:    nameCs,
		NameEn:    sanitize.TextPtr(input.NameEn),
		Level:     input.Level,
		ParentID:  parentID,
		ValidFrom: input.ValidFrom,
		ValidTo:   input.ValidTo,
		SortOrder: input.SortOrder,
	}

	if err := s.classificationRepo.Create(ctx, node); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrClassificationCodeExists
		}
		return nil, err
	}

	metrics.IncCodelistMutation(classificationEntityType, string(model.ChangeTypeCreate))

	if err := s.recorder.LogCreate(ctx, actor, classificationEntityType, node.ID, node.Code, classificationSnapshot(node)); err != nil {
		// The node is already committed; surface the audit failure without
		// undoing the write.
		return node, err
	}

	s.publishChange(model.ChangeTypeCreate, node, actor)
	return node, nil
}

func (s *ClassificationService) Update(ctx context.Context, actor string, id int64, input ClassificationInput) (*model.ClassificationNode, error) {
	if s.classificationRepo == nil {
		return nil, errors.New("classification repository is nil")
	}

	existing, err := s.classificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassificationNotFound
		}
		return nil, err
	}

	code := strings.TrimSpace(input.Code)
	nameCs := sanitize.Text(input.NameCs)
	if code == "" || nameCs == "" {
		return nil, ErrInvalidClassificationInput
	}

	if !strings.EqualFold(code, existing.Code) {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	// Level and parent may change together; the pair is re-validated by the
	// same resolution rule as creation.
	parentID, err := s.ValidateAndResolveParent(ctx, input.Level, input.ParentID)
	if err != nil {
		return nil, err
	}

	oldSnapshot := classificationSnapshot(existing)

	existing.Code = code
	existing.NameCs = nameCs
	existing.NameEn = sanitize.TextPtr(input.NameEn)
	existing.Level = input.Level
	existing.ParentID = parentID
	existing.ValidFrom = input.ValidFrom
	existing.ValidTo = input.ValidTo
	existing.SortOrder = input.SortOrder

	if err := s.classificationRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrClassificationCodeExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassificationNotFound
		}
		return nil, err
	}

	metrics.IncCodelistMutation(classificationEntityType, string(model.ChangeTypeUpdate))

	if err := s.recorder.LogUpdate(ctx, actor, classificationEntityType, existing.ID, existing.Code, oldSnapshot, classificationSnapshot(existing)); err != nil {
		return existing, err
	}

	s.publishChange(model.ChangeTypeUpdate, existing, actor)
	return existing, nil
}

func (s *ClassificationService) Delete(ctx context.Context, actor string, id int64) error {
	if s.classificationRepo == nil {
		return errors.New("classification repository is nil")
	}

	existing, err := s.classificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassificationNotFound
		}
		return err
	}

	// Known race: a child created between this guard and the delete below is
	// orphaned. Closing it would need the check and delete in one
	// transaction with the parent row locked.
	if err := s.GuardDeletion(ctx, id); err != nil {
		return err
	}

	if err := s.classificationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassificationNotFound
		}
		return err
	}

	metrics.IncCodelistMutation(classificationEntityType, string(model.ChangeTypeDelete))

	if err := s.recorder.LogDelete(ctx, actor, classificationEntityType, existing.ID, existing.Code, classificationSnapshot(existing)); err != nil {
		return err
	}

	s.publishChange(model.ChangeTypeDelete, existing, actor)
	return nil
}

func (s *ClassificationService) FindByID(ctx context.Context, id int64) (*model.ClassificationNode, error) {
	node, err := s.classificationRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClassificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *ClassificationService) List(ctx context.Context, filter repository.ClassificationListFilter) ([]*model.ClassificationNode, int64, error) {
	return s.classificationRepo.List(ctx, filter)
}

// FindTree materializes the whole classification forest: all level-1 nodes
// with their full descendant subtrees attached, ordered by code at every
// level. One flat read, O(N) assembly, no cycle risk under the forest
// invariant.
func (s *ClassificationService) FindTree(ctx context.Context) ([]*model.ClassificationNode, error) {
	nodes, err := s.classificationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return assembleForest(nodes), nil
}

// FindWithChildren returns one node with its full descendant subtree
// attached. Plain FindByID never populates children.
func (s *ClassificationService) FindWithChildren(ctx context.Context, id int64) (*model.ClassificationNode, error) {
	nodes, err := s.classificationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	assembleForest(nodes)
	for _, node := range nodes {
		if node.ID == id {
			return node, nil
		}
	}

	return nil, ErrClassificationNotFound
}

func (s *ClassificationService) FindChildren(ctx context.Context, parentID int64) ([]*model.ClassificationNode, error) {
	return s.classificationRepo.FindChildren(ctx, parentID)
}

func (s *ClassificationService) FindByLevel(ctx context.Context, level int) ([]*model.ClassificationNode, error) {
	return s.classificationRepo.FindByLevel(ctx, level)
}

func (s *ClassificationService) Search(ctx context.Context, query string) ([]*model.ClassificationNode, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []*model.ClassificationNode{}, nil
	}

	return s.classificationRepo.Search(ctx, trimmed)
}

func (s *ClassificationService) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	existing, err := s.classificationRepo.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrClassificationCodeExists
}

func (s *ClassificationService) publishChange(changeType model.ChangeType, node *model.ClassificationNode, actor string) {
	if s.bus == nil {
		return
	}

	eventName := changeEventName(changeType)
	s.bus.Publish(eventName, event.ChangePayload{
		EntityType: classificationEntityType,
		EntityID:   node.ID,
		EntityCode: node.Code,
		ChangeType: string(changeType),
		ChangedBy:  normalizeActor(actor),
		Timestamp:  time.Now().UTC(),
	})
}

// assembleForest wires the flat node list into parent→children form via an
// id index and returns the level-1 roots. Input order (by code) carries over
// to every children slice. Children are reset first so repeated assembly
// over the same slice stays idempotent.
func assembleForest(nodes []*model.ClassificationNode) []*model.ClassificationNode {
	for _, node := range nodes {
		node.Children = nil
	}

	index := make(map[int64]*model.ClassificationNode, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}

	roots := make([]*model.ClassificationNode, 0, len(nodes))
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := index[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		if node.Level == model.ClassificationMinLevel {
			roots = append(roots, node)
		}
	}

	return roots
}

func classificationSnapshot(node *model.ClassificationNode) *Snapshot {
	return NewSnapshot().
		Set("code", node.Code).
		Set("nameCs", node.NameCs).
		Set("nameEn", node.NameEn).
		Set("level", node.Level).
		Set("parentId", node.ParentID).
		Set("validFrom", node.ValidFrom).
		Set("validTo", node.ValidTo).
		Set("sortOrder", node.SortOrder)
}

func changeEventName(changeType model.ChangeType) string {
	switch changeType {
	case model.ChangeTypeCreate:
		return event.EventCodelistCreated
	case model.ChangeTypeUpdate:
		return event.EventCodelistUpdated
	default:
		return event.EventCodelistDeleted
	}
}
