package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ImportKind string

const (
	ImportKindBOQ       ImportKind = "boq"
	ImportKindLocations ImportKind = "locations"
)

// ImportRun is the audit record of one spreadsheet import.
type ImportRun struct {
	bun.BaseModel `bun:"table:import_runs,alias:ir"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Kind       ImportKind `bun:"kind,notnull" json:"kind"`
	FileName   string     `bun:"file_name" json:"file_name"`
	Total      int        `bun:"total,notnull" json:"total"`
	Succeeded  int        `bun:"succeeded,notnull" json:"succeeded"`
	Skipped    int        `bun:"skipped,notnull" json:"skipped"`
	Failed     int        `bun:"failed,notnull" json:"failed"`
	StartedAt  time.Time  `bun:"started_at,notnull" json:"started_at"`
	FinishedAt time.Time  `bun:"finished_at,notnull" json:"finished_at"`

	Logs []*ImportRowLog `bun:"rel:has-many,join:id=run_id" json:"logs,omitempty"`
}

// ImportRowLog is one per-row outcome line of an import run.
type ImportRowLog struct {
	bun.BaseModel `bun:"table:import_row_logs,alias:irl"`

	ID      int64     `bun:"id,pk,autoincrement" json:"-"`
	RunID   uuid.UUID `bun:"run_id,type:uuid,notnull" json:"-"`
	Row     int       `bun:"row,notnull" json:"row"`
	Status  string    `bun:"status,notnull" json:"status"`
	Message string    `bun:"message" json:"message"`
}
