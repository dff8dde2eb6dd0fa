package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

func strValue(v string) *string {
	return &v
}

func TestAuditFindWithFiltersOrdersNewestFirst(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAuditRepository(pool)
	querySvc := service.NewAuditQueryService(repo, pool)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	seed := []*model.AuditEntry{
		{EntityType: "VoltageLevel", EntityID: 1, EntityCode: "VVN", ChangeType: model.ChangeTypeCreate, ChangedBy: "editor1", ChangedAt: base, NewValues: strValue(`{"code":"VVN"}`)},
		{EntityType: "VoltageLevel", EntityID: 2, EntityCode: "NN", ChangeType: model.ChangeTypeCreate, ChangedBy: "editor1", ChangedAt: base.Add(1 * time.Minute), NewValues: strValue(`{"code":"NN"}`)},
		{EntityType: "NetworkType", EntityID: 3, EntityCode: "NN", ChangeType: model.ChangeTypeUpdate, ChangedBy: "editor2", ChangedAt: base.Add(2 * time.Minute), OldValues: strValue(`{"sortOrder":1}`), NewValues: strValue(`{"sortOrder":2}`)},
		{EntityType: "Classification", EntityID: 4, EntityCode: "1.1", ChangeType: model.ChangeTypeDelete, ChangedBy: "admin", ChangedAt: base.Add(3 * time.Minute), OldValues: strValue(`{"code":"1.1"}`)},
		{EntityType: "VoltageLevel", EntityID: 5, EntityCode: "VN", ChangeType: model.ChangeTypeUpdate, ChangedBy: "editor2", ChangedAt: base.Add(4 * time.Minute), OldValues: strValue(`{"sortOrder":3}`), NewValues: strValue(`{"sortOrder":4}`)},
	}
	for _, entry := range seed {
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("seed audit entry %s/%s: %v", entry.EntityType, entry.EntityCode, err)
		}
	}

	assertNewestFirst := func(t *testing.T, entries []*model.AuditEntry) {
		t.Helper()
		for i := 1; i < len(entries); i++ {
			if entries[i].ChangedAt.After(entries[i-1].ChangedAt) {
				t.Fatalf("entries out of order at %d: %v after %v", i, entries[i].ChangedAt, entries[i-1].ChangedAt)
			}
		}
	}

	t.Run("unfiltered", func(t *testing.T) {
		entries, total, err := querySvc.FindWithFilters(ctx, service.AuditQueryFilter{}, 1, 50)
		if err != nil {
			t.Fatalf("FindWithFilters: %v", err)
		}
		if total != int64(len(seed)) || len(entries) != len(seed) {
			t.Fatalf("expected all %d entries, got %d (total %d)", len(seed), len(entries), total)
		}
		if entries[0].EntityCode != "VN" || entries[len(entries)-1].EntityCode != "VVN" {
			t.Fatalf("expected newest first, got %s .. %s", entries[0].EntityCode, entries[len(entries)-1].EntityCode)
		}
		assertNewestFirst(t, entries)
	})

	t.Run("change type filter", func(t *testing.T) {
		changeType := model.ChangeTypeUpdate
		entries, total, err := querySvc.FindWithFilters(ctx, service.AuditQueryFilter{ChangeType: &changeType}, 1, 50)
		if err != nil {
			t.Fatalf("FindWithFilters: %v", err)
		}
		if total != 2 || len(entries) != 2 {
			t.Fatalf("expected 2 UPDATE entries, got %d (total %d)", len(entries), total)
		}
		if entries[0].EntityCode != "VN" || entries[1].EntityCode != "NN" {
			t.Fatalf("expected VN then NN, got %s then %s", entries[0].EntityCode, entries[1].EntityCode)
		}
		assertNewestFirst(t, entries)
	})

	t.Run("entity type and search combine", func(t *testing.T) {
		entries, total, err := querySvc.FindWithFilters(ctx, service.AuditQueryFilter{
			EntityType: strValue("VoltageLevel"),
			Search:     strValue("NN"),
		}, 1, 50)
		if err != nil {
			t.Fatalf("FindWithFilters: %v", err)
		}
		if total != 1 || len(entries) != 1 {
			t.Fatalf("expected exactly the NN voltage level entry, got %d (total %d)", len(entries), total)
		}
		if entries[0].EntityType != "VoltageLevel" || entries[0].EntityCode != "NN" {
			t.Fatalf("unexpected entry: %+v", entries[0])
		}
	})

	t.Run("sort params ignored", func(t *testing.T) {
		entries, _, err := querySvc.FindWithFilters(ctx, service.AuditQueryFilter{
			SortBy:    strValue("entity_code"),
			SortOrder: strValue("asc"),
		}, 1, 50)
		if err != nil {
			t.Fatalf("FindWithFilters: %v", err)
		}
		if len(entries) != len(seed) {
			t.Fatalf("expected all entries, got %d", len(entries))
		}
		if entries[0].EntityCode != "VN" {
			t.Fatalf("list must stay newest first despite sort params, got %s first", entries[0].EntityCode)
		}
		assertNewestFirst(t, entries)
	})

	t.Run("pagination window", func(t *testing.T) {
		entries, total, err := querySvc.FindWithFilters(ctx, service.AuditQueryFilter{}, 2, 2)
		if err != nil {
			t.Fatalf("FindWithFilters: %v", err)
		}
		if total != int64(len(seed)) {
			t.Fatalf("total must count all matches, got %d", total)
		}
		if len(entries) != 2 || entries[0].EntityCode != "NN" || entries[0].EntityType != "NetworkType" {
			t.Fatalf("unexpected second page: %+v", entries)
		}
	})
}
