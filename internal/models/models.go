package models

import "time"

// Row is the display-ready view of one ledger record in a list.
type Row struct {
	ID        uint64
	Title     string   // primary label, used by grid cards and pickers
	Cells     []string // one per list column, already formatted
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Option is one choice in a picker or lookup table.
type Option struct {
	ID    uint64
	Label string
}

// Detail is one labelled value on the record detail view.
type Detail struct {
	Label string
	Value string
}

// Derived is one computed line shown beside a form (tax summary, volume).
type Derived struct {
	Label    string
	Value    string
	Emphasis bool
}
