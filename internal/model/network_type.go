package model

import "time"

// NetworkType is the flat codelist of utility network types (electricity,
// gas, water, ...).
type NetworkType struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	NameCs      string    `db:"name_cs" json:"name_cs"`
	NameEn      *string   `db:"name_en" json:"name_en,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
