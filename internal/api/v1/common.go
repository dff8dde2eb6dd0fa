package v1

import (
	"strconv"
	"strings"

	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

func paginationFrom(page, pageSize int) repository.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	return repository.Pagination{
		Limit:  int32(pageSize),
		Offset: int32((page - 1) * pageSize),
	}
}

func parseIntOrDefault(raw string, def int) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isEditor(role string) bool {
	trimmed := strings.TrimSpace(role)
	return strings.EqualFold(trimmed, "editor") || strings.EqualFold(trimmed, "admin")
}
