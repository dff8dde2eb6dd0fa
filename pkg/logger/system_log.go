package logger

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultSystemLogCapacity = 1000
	defaultLogPage           = 1
	defaultLogPageSize       = 20
	maxLogPageSize           = 200
)

// SystemLogEntry is one captured log line, kept in memory for the admin UI
// log panel. Not a substitute for the real log sink.
type SystemLogEntry struct {
	ID        int64                  `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// SystemLogStore is a fixed-capacity ring of recent log entries.
type SystemLogStore struct {
	mu       sync.RWMutex
	entries  []SystemLogEntry
	capacity int
	next     int
	count    int
	seq      int64
}

func NewSystemLogStore(capacity int) *SystemLogStore {
	if capacity <= 0 {
		capacity = defaultSystemLogCapacity
	}

	return &SystemLogStore{
		entries:  make([]SystemLogEntry, capacity),
		capacity: capacity,
	}
}

func (s *SystemLogStore) Add(entry SystemLogEntry) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	entry.ID = s.seq
	s.entries[s.next] = entry
	s.next = (s.next + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
}

// List returns entries newest first, optionally filtered by level, with the
// total matching count for pagination.
func (s *SystemLogStore) List(page, pageSize int, level string) ([]SystemLogEntry, int64) {
	if s == nil {
		return nil, 0
	}

	if page <= 0 {
		page = defaultLogPage
	}
	if pageSize <= 0 {
		pageSize = defaultLogPageSize
	}
	if pageSize > maxLogPageSize {
		pageSize = maxLogPageSize
	}

	levelFilter := strings.ToLower(strings.TrimSpace(level))

	s.mu.RLock()
	matched := make([]SystemLogEntry, 0, s.count)
	for i := 0; i < s.count; i++ {
		idx := (s.next - 1 - i + s.capacity*2) % s.capacity
		entry := s.entries[idx]
		if levelFilter != "" && strings.ToLower(entry.Level) != levelFilter {
			continue
		}
		matched = append(matched, entry)
	}
	s.mu.RUnlock()

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []SystemLogEntry{}, total
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total
}

type systemLogCore struct {
	zapcore.Core
	store *SystemLogStore
}

// WrapZapLogger tees every emitted entry into the in-memory store while the
// wrapped core keeps writing to its own sink.
func WrapZapLogger(base *zap.Logger, store *SystemLogStore) *zap.Logger {
	if base == nil || store == nil {
		return base
	}

	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &systemLogCore{
			Core:  core,
			store: store,
		}
	}))
}

func (c *systemLogCore) With(fields []zapcore.Field) zapcore.Core {
	return &systemLogCore{
		Core:  c.Core.With(fields),
		store: c.store,
	}
}

func (c *systemLogCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		checked = checked.AddCore(entry, c)
	}
	return checked
}

func (c *systemLogCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.store != nil {
		enc := zapcore.NewMapObjectEncoder()
		for _, field := range SanitizeFields(fields) {
			field.AddTo(enc)
		}

		var fieldMap map[string]interface{}
		if len(enc.Fields) > 0 {
			fieldMap = enc.Fields
		}

		c.store.Add(SystemLogEntry{
			Timestamp: entry.Time.UTC(),
			Level:     entry.Level.String(),
			Message:   entry.Message,
			Caller:    entry.Caller.TrimmedPath(),
			Fields:    fieldMap,
		})
	}

	return c.Core.Write(entry, fields)
}
