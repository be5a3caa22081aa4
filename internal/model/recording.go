package model

import "time"

// Recording describes a heart-rate file imported into the SQLite store.
type Recording struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // original file path
	Samples    int       `json:"samples"`
	ImportedAt time.Time `json:"imported_at"`
}
