package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

type fakeAuditRepo struct {
	entries   []*model.AuditEntry
	createErr error
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *model.AuditEntry) error {
	if f.createErr != nil {
		return f.createErr
	}

	copied := *entry
	copied.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, &copied)
	entry.ID = copied.ID
	return nil
}

func (f *fakeAuditRepo) FindByID(_ context.Context, id int64) (*model.AuditEntry, error) {
	for _, entry := range f.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestLogCreateHasNoOldValues(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	snap := NewSnapshot().Set("code", "VN").Set("sortOrder", 1)
	if err := recorder.LogCreate(context.Background(), "editor1", "VoltageLevel", 7, "VN", snap); err != nil {
		t.Fatalf("LogCreate: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}

	entry := repo.entries[0]
	if entry.ChangeType != model.ChangeTypeCreate {
		t.Fatalf("expected CREATE, got %s", entry.ChangeType)
	}
	if entry.OldValues != nil {
		t.Fatalf("CREATE entry must have no old values, got %q", *entry.OldValues)
	}
	if entry.NewValues == nil {
		t.Fatal("CREATE entry must carry new values")
	}
	if entry.ChangedBy != "editor1" {
		t.Fatalf("expected actor editor1, got %s", entry.ChangedBy)
	}
}

func TestLogDeleteHasNoNewValues(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	snap := NewSnapshot().Set("code", "VN")
	if err := recorder.LogDelete(context.Background(), "editor1", "VoltageLevel", 7, "VN", snap); err != nil {
		t.Fatalf("LogDelete: %v", err)
	}

	entry := repo.entries[0]
	if entry.ChangeType != model.ChangeTypeDelete {
		t.Fatalf("expected DELETE, got %s", entry.ChangeType)
	}
	if entry.NewValues != nil {
		t.Fatalf("DELETE entry must have no new values, got %q", *entry.NewValues)
	}
	if entry.OldValues == nil {
		t.Fatal("DELETE entry must carry old values")
	}
}

func TestLogUpdateSuppressesNoOpChanges(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	oldSnap := NewSnapshot().Set("code", "NN").Set("sortOrder", 2)
	newSnap := NewSnapshot().Set("sortOrder", 2).Set("code", "NN")

	if err := recorder.LogUpdate(context.Background(), "editor1", "NetworkType", 3, "NN", oldSnap, newSnap); err != nil {
		t.Fatalf("LogUpdate: %v", err)
	}

	if len(repo.entries) != 0 {
		t.Fatalf("no-op update must write no entry, got %d", len(repo.entries))
	}
}

func TestLogUpdateWritesBothSnapshots(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	oldSnap := NewSnapshot().Set("code", "NN").Set("sortOrder", 2)
	newSnap := NewSnapshot().Set("code", "NN").Set("sortOrder", 5)

	if err := recorder.LogUpdate(context.Background(), "editor1", "NetworkType", 3, "NN", oldSnap, newSnap); err != nil {
		t.Fatalf("LogUpdate: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}

	entry := repo.entries[0]
	if entry.OldValues == nil || entry.NewValues == nil {
		t.Fatal("UPDATE entry must carry both snapshots")
	}
}

func TestWriteDefaultsActorToSystem(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	if err := recorder.LogCreate(context.Background(), "  ", "VoltageLevel", 1, "VN", NewSnapshot().Set("code", "VN")); err != nil {
		t.Fatalf("LogCreate: %v", err)
	}

	if repo.entries[0].ChangedBy != SystemActor {
		t.Fatalf("expected actor %q, got %q", SystemActor, repo.entries[0].ChangedBy)
	}
}

func TestWriteAssignsTimestamp(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := NewAuditRecorder(repo, nil)

	before := time.Now().UTC()
	if err := recorder.LogCreate(context.Background(), "editor1", "VoltageLevel", 1, "VN", NewSnapshot().Set("code", "VN")); err != nil {
		t.Fatalf("LogCreate: %v", err)
	}
	after := time.Now().UTC()

	changedAt := repo.entries[0].ChangedAt
	if changedAt.Before(before) || changedAt.After(after) {
		t.Fatalf("changed_at %v not assigned during write", changedAt)
	}
}

func TestWriteRejectsEmptyEntityType(t *testing.T) {
	recorder := NewAuditRecorder(&fakeAuditRepo{}, nil)

	err := recorder.LogCreate(context.Background(), "editor1", "  ", 1, "VN", NewSnapshot().Set("code", "VN"))
	if !errors.Is(err, ErrInvalidAuditInput) {
		t.Fatalf("expected ErrInvalidAuditInput, got %v", err)
	}
}

func TestWriteSurfacesRepositoryError(t *testing.T) {
	repoErr := errors.New("insert failed")
	recorder := NewAuditRecorder(&fakeAuditRepo{createErr: repoErr}, nil)

	err := recorder.LogCreate(context.Background(), "editor1", "VoltageLevel", 1, "VN", NewSnapshot().Set("code", "VN"))
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
