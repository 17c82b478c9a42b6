package services

import (
	"time"

	"cctv-survey/internal/models"

	"github.com/google/uuid"
)

type RowStatus string

const (
	RowImported RowStatus = "imported"
	RowExisting RowStatus = "existing" // already present, treated as success
	RowSkipped  RowStatus = "skipped"  // failed validation, nothing written
	RowFailed   RowStatus = "failed"   // backend call failed
)

// RowLog is the outcome of one spreadsheet row.
type RowLog struct {
	Row      int       `json:"row"`
	Status   RowStatus `json:"status"`
	Message  string    `json:"message"`
	RecordID int       `json:"record_id,omitempty"`
}

// ImportSummary is the result of a whole batch, logs in spreadsheet order.
type ImportSummary struct {
	RunID      uuid.UUID         `json:"run_id"`
	Kind       models.ImportKind `json:"kind"`
	FileName   string            `json:"file_name"`
	Total      int               `json:"total"`
	Succeeded  int               `json:"succeeded"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Logs       []RowLog          `json:"logs"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`

	// Location imports only
	Created *LocationCounts `json:"created,omitempty"`
	Totals  *LocationCounts `json:"totals,omitempty"`
}

func newSummary(kind models.ImportKind, fileName string) *ImportSummary {
	return &ImportSummary{
		RunID:     uuid.New(),
		Kind:      kind,
		FileName:  fileName,
		StartedAt: time.Now().UTC(),
	}
}

func (s *ImportSummary) finish(logs []RowLog) {
	s.Logs = logs
	s.Total = len(logs)
	s.Succeeded, s.Skipped, s.Failed = 0, 0, 0
	for _, l := range logs {
		switch l.Status {
		case RowImported, RowExisting:
			s.Succeeded++
		case RowSkipped:
			s.Skipped++
		case RowFailed:
			s.Failed++
		}
	}
	s.FinishedAt = time.Now().UTC()
}

// Run converts the summary into its audit records.
func (s *ImportSummary) Run() *models.ImportRun {
	run := &models.ImportRun{
		ID:         s.RunID,
		Kind:       s.Kind,
		FileName:   s.FileName,
		Total:      s.Total,
		Succeeded:  s.Succeeded,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	for _, l := range s.Logs {
		run.Logs = append(run.Logs, &models.ImportRowLog{
			RunID:   s.RunID,
			Row:     l.Row,
			Status:  string(l.Status),
			Message: l.Message,
		})
	}
	return run
}
