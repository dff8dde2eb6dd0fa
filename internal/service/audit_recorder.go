package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cermakludek/legislative-enums-sub000/internal/metrics"
	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

// SystemActor is recorded as the change author when no authenticated
// principal exists (migrations, scheduler jobs, bootstrap seeding).
const SystemActor = "system"

var ErrInvalidAuditInput = errors.New("invalid audit input")

// AuditRecorder appends immutable change records for every codelist
// mutation. It writes through its own repository pool acquisition rather
// than any caller-held transaction: a committed business mutation is never
// rolled back because the audit insert failed, and a failed downstream
// notification never unwinds an audit entry. The cost is the documented
// partial-failure mode where a mutation commits but its audit write errors;
// callers get that error and decide how to surface it.
type AuditRecorder struct {
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewAuditRecorder(auditRepo repository.AuditRepository, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuditRecorder{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogCreate writes a CREATE entry. OldValues is always absent.
func (r *AuditRecorder) LogCreate(ctx context.Context, actor, entityType string, entityID int64, entityCode string, newValues *Snapshot) error {
	return r.write(ctx, &model.AuditEntry{
		EntityType: strings.TrimSpace(entityType),
		EntityID:   entityID,
		EntityCode: strings.TrimSpace(entityCode),
		ChangeType: model.ChangeTypeCreate,
		ChangedBy:  normalizeActor(actor),
		NewValues:  r.serialize(newValues),
	})
}

// LogUpdate writes an UPDATE entry with both snapshots. When the snapshots
// are equal as unordered key/value sets no entry is written at all, so form
// re-submits that change nothing leave no trace in the log.
func (r *AuditRecorder) LogUpdate(ctx context.Context, actor, entityType string, entityID int64, entityCode string, oldValues, newValues *Snapshot) error {
	if oldValues.Equal(newValues) {
		metrics.AuditUpdatesSuppressed.Inc()
		return nil
	}

	return r.write(ctx, &model.AuditEntry{
		EntityType: strings.TrimSpace(entityType),
		EntityID:   entityID,
		EntityCode: strings.TrimSpace(entityCode),
		ChangeType: model.ChangeTypeUpdate,
		ChangedBy:  normalizeActor(actor),
		OldValues:  r.serialize(oldValues),
		NewValues:  r.serialize(newValues),
	})
}

// LogDelete writes a DELETE entry. NewValues is always absent.
func (r *AuditRecorder) LogDelete(ctx context.Context, actor, entityType string, entityID int64, entityCode string, oldValues *Snapshot) error {
	return r.write(ctx, &model.AuditEntry{
		EntityType: strings.TrimSpace(entityType),
		EntityID:   entityID,
		EntityCode: strings.TrimSpace(entityCode),
		ChangeType: model.ChangeTypeDelete,
		ChangedBy:  normalizeActor(actor),
		OldValues:  r.serialize(oldValues),
	})
}

func (r *AuditRecorder) write(ctx context.Context, entry *model.AuditEntry) error {
	if r == nil || r.auditRepo == nil {
		return errors.New("audit repository is nil")
	}
	if entry.EntityType == "" {
		return ErrInvalidAuditInput
	}

	// The timestamp is assigned here, never supplied by the caller.
	entry.ChangedAt = time.Now().UTC()

	if err := r.auditRepo.Create(ctx, entry); err != nil {
		metrics.AuditWriteErrors.Inc()
		r.logger.Error("audit entry write failed",
			zap.String("entity_type", entry.EntityType),
			zap.Int64("entity_id", entry.EntityID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err),
		)
		return err
	}

	metrics.IncAuditEntryWritten(string(entry.ChangeType))
	return nil
}

// serialize renders a snapshot to its stored form. A JSON failure degrades
// to the plain-text fallback rather than losing the audit trail; the error
// is logged for operators and counted, but never surfaced to the mutation.
func (r *AuditRecorder) serialize(snap *Snapshot) *string {
	if snap.Len() == 0 {
		return nil
	}

	raw, err := snap.Serialize()
	if err != nil {
		metrics.AuditSerializationFallbacks.Inc()
		r.logger.Warn("audit snapshot serialization failed, storing plain-text fallback",
			zap.Error(err),
		)
		raw = snap.Fallback()
	}

	return &raw
}

func normalizeActor(actor string) string {
	trimmed := strings.TrimSpace(actor)
	if trimmed == "" {
		return SystemActor
	}
	return trimmed
}
