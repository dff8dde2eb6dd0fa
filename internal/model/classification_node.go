package model

import "time"

const (
	ClassificationMinLevel = 1
	ClassificationMaxLevel = 4
)

// ClassificationNode is one entry of the 4-level building-classification
// codelist (KSO). Codes form a dotted numeric path: level 1 is a 3-digit
// group, each deeper level appends one dotted segment. The code is treated
// as an opaque unique string here; formatting is the caller's concern.
type ClassificationNode struct {
	ID        int64      `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	NameCs    string     `db:"name_cs" json:"name_cs"`
	NameEn    *string    `db:"name_en" json:"name_en,omitempty"`
	Level     int        `db:"level" json:"level"`
	ParentID  *int64     `db:"parent_id" json:"parent_id,omitempty"`
	ValidFrom *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo   *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`

	// Children is populated only by the explicit tree reads (FindTree,
	// FindWithChildren). Flat queries leave it nil so plain list/detail
	// responses never serialize the whole subtree by accident.
	Children []*ClassificationNode `db:"-" json:"children,omitempty"`
}
