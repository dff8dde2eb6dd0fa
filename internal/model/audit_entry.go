package model

import "time"

type ChangeType string

const (
	ChangeTypeCreate ChangeType = "CREATE"
	ChangeTypeUpdate ChangeType = "UPDATE"
	ChangeTypeDelete ChangeType = "DELETE"
)

func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeCreate, ChangeTypeUpdate, ChangeTypeDelete:
		return true
	default:
		return false
	}
}

// AuditEntry is one immutable record of a create/update/delete on a codelist
// record. OldValues/NewValues hold the serialized field snapshots: a CREATE
// entry has no OldValues, a DELETE entry has no NewValues. Rows are never
// updated or deleted once written.
type AuditEntry struct {
	ID         int64      `db:"id" json:"id"`
	EntityType string     `db:"entity_type" json:"entity_type"`
	EntityID   int64      `db:"entity_id" json:"entity_id"`
	EntityCode string     `db:"entity_code" json:"entity_code"`
	ChangeType ChangeType `db:"change_type" json:"change_type"`
	ChangedBy  string     `db:"changed_by" json:"changed_by"`
	ChangedAt  time.Time  `db:"changed_at" json:"changed_at"`
	OldValues  *string    `db:"old_values" json:"old_values,omitempty"`
	NewValues  *string    `db:"new_values" json:"new_values,omitempty"`
}
