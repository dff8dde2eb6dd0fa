package service

import (
	"strings"
	"testing"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
)

func strPtr(v string) *string {
	return &v
}

func TestBuildAuditConditionsEmptyFilter(t *testing.T) {
	conditions, args := buildAuditConditions(AuditQueryFilter{})

	if len(conditions) != 0 || len(args) != 0 {
		t.Fatalf("expected no conditions, got %v / %v", conditions, args)
	}
}

func TestBuildAuditConditionsEqualityFilters(t *testing.T) {
	changeType := model.ChangeTypeUpdate
	conditions, args := buildAuditConditions(AuditQueryFilter{
		EntityType: strPtr("VoltageLevel"),
		ChangeType: &changeType,
		ChangedBy:  strPtr("editor1"),
	})

	if len(conditions) != 3 {
		t.Fatalf("expected 3 conditions, got %v", conditions)
	}
	if conditions[0] != "entity_type = $1" || conditions[1] != "change_type = $2" || conditions[2] != "changed_by = $3" {
		t.Fatalf("unexpected conditions: %v", conditions)
	}
	if args[0] != "VoltageLevel" || args[1] != "UPDATE" || args[2] != "editor1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildAuditConditionsSearchGroup(t *testing.T) {
	conditions, args := buildAuditConditions(AuditQueryFilter{
		EntityType: strPtr("Classification"),
		Search:     strPtr("kancelář"),
	})

	if len(conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %v", conditions)
	}

	search := conditions[1]
	if !strings.HasPrefix(search, "(") || !strings.HasSuffix(search, ")") {
		t.Fatalf("search condition must be a parenthesized OR group: %s", search)
	}
	for _, column := range []string{"entity_type", "entity_code", "changed_by", "old_values", "new_values"} {
		if !strings.Contains(search, column+" ILIKE $2") {
			t.Fatalf("search group missing %s: %s", column, search)
		}
	}
	if args[1] != "%kancelář%" {
		t.Fatalf("expected wrapped search arg, got %v", args[1])
	}
}

func TestBuildAuditConditionsIgnoresBlankValues(t *testing.T) {
	conditions, args := buildAuditConditions(AuditQueryFilter{
		EntityType: strPtr("   "),
		ChangedBy:  strPtr(""),
	})

	if len(conditions) != 0 || len(args) != 0 {
		t.Fatalf("blank filter values must be dropped, got %v / %v", conditions, args)
	}
}

func TestBuildAuditConditionsIgnoresSortParams(t *testing.T) {
	conditions, args := buildAuditConditions(AuditQueryFilter{
		SortBy:    strPtr("entity_code"),
		SortOrder: strPtr("asc"),
	})

	if len(conditions) != 0 || len(args) != 0 {
		t.Fatalf("sort params must not produce predicates, got %v / %v", conditions, args)
	}
}

func TestNormalizeAuditPagination(t *testing.T) {
	cases := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative", -5, -1, 1, 20},
		{"capped", 2, 1000, 2, 200},
		{"passthrough", 3, 50, 3, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, pageSize := normalizeAuditPagination(tc.page, tc.size)
			if page != tc.wantPage || pageSize != tc.wantPageSize {
				t.Fatalf("got (%d, %d), want (%d, %d)", page, pageSize, tc.wantPage, tc.wantPageSize)
			}
		})
	}
}
