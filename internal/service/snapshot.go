package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Snapshot is the point-in-time field set stored on an audit entry. Keys keep
// their insertion order so serialized snapshots of the same entity type stay
// diffable across entries; equality is order-independent.
type Snapshot struct {
	keys   []string
	values map[string]any
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		values: make(map[string]any),
	}
}

// Set records a field value. Nil pointers and typed nils are dropped so
// optional fields that were never filled do not show up as explicit nulls.
// Non-nil pointers are dereferenced before storage.
func (s *Snapshot) Set(key string, value any) *Snapshot {
	if s == nil || strings.TrimSpace(key) == "" {
		return s
	}

	resolved, ok := resolveValue(value)
	if !ok {
		return s
	}

	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = resolved
	return s
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

func (s *Snapshot) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[key]
	return value, ok
}

// Equal compares two snapshots as unordered key/value sets. Values compare by
// their normalized scalar form, so 5 and int64(5) are the same value and key
// insertion order never matters.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil || other == nil {
		return true
	}

	for key, value := range s.values {
		otherValue, ok := other.values[key]
		if !ok {
			return false
		}
		if normalizeScalar(value) != normalizeScalar(otherValue) {
			return false
		}
	}
	return true
}

// Serialize renders the snapshot as a JSON object with keys in insertion
// order. encoding/json would sort map keys, so the object is built manually.
func (s *Snapshot) Serialize() (string, error) {
	if s.Len() == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := json.Marshal(key)
		if err != nil {
			return "", err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		value := s.values[key]
		if ts, ok := value.(time.Time); ok {
			value = ts.UTC().Format(time.RFC3339)
		}
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')

	return buf.String(), nil
}

// Fallback renders a "key=value; key=value" plain-text form used when JSON
// serialization fails. Keys are sorted so the output is stable.
func (s *Snapshot) Fallback() string {
	if s.Len() == 0 {
		return ""
	}

	keys := append([]string(nil), s.keys...)
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+normalizeScalar(s.values[key]))
	}
	return strings.Join(parts, "; ")
}

func resolveValue(value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func normalizeScalar(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case float32:
		return fmt.Sprintf("%g", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
