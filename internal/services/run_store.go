package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"cctv-survey/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrRunNotFound   = errors.New("import run not found")
	ErrAuditDisabled = errors.New("import audit store is not configured")
)

// RunStore keeps the audit trail of import batches.
type RunStore interface {
	SaveRun(ctx context.Context, summary *ImportSummary) error
	ListRuns(ctx context.Context, limit, offset int) ([]models.ImportRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error)
}

// BunRunStore persists runs to Postgres.
type BunRunStore struct {
	db *bun.DB
}

func NewBunRunStore(db *bun.DB) *BunRunStore {
	return &BunRunStore{db: db}
}

// SaveRun inserts the run and its row logs in one transaction.
func (s *BunRunStore) SaveRun(ctx context.Context, summary *ImportSummary) error {
	run := summary.Run()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(run).Exec(ctx); err != nil {
			return fmt.Errorf("insert import run: %w", err)
		}
		if len(run.Logs) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&run.Logs).Exec(ctx); err != nil {
			return fmt.Errorf("insert row logs: %w", err)
		}
		return nil
	})
}

func (s *BunRunStore) ListRuns(ctx context.Context, limit, offset int) ([]models.ImportRun, error) {
	var runs []models.ImportRun
	err := s.db.NewSelect().
		Model(&runs).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return runs, err
}

func (s *BunRunStore) GetRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	run := new(models.ImportRun)
	err := s.db.NewSelect().
		Model(run).
		Where("ir.id = ?", id).
		Relation("Logs", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("irl.row ASC")
		}).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// NopRunStore is used when no database is configured: saves are dropped
// and reads report ErrAuditDisabled.
type NopRunStore struct{}

func (NopRunStore) SaveRun(context.Context, *ImportSummary) error { return nil }

func (NopRunStore) ListRuns(context.Context, int, int) ([]models.ImportRun, error) {
	return nil, ErrAuditDisabled
}

func (NopRunStore) GetRun(context.Context, uuid.UUID) (*models.ImportRun, error) {
	return nil, ErrAuditDisabled
}

// MemoryRunStore keeps runs in process; the CLI uses it to print a run
// back and tests use it to inspect what was recorded.
type MemoryRunStore struct {
	mu   sync.Mutex
	runs []*models.ImportRun
}

func (m *MemoryRunStore) SaveRun(_ context.Context, summary *ImportSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, summary.Run())
	return nil
}

func (m *MemoryRunStore) ListRuns(_ context.Context, limit, offset int) ([]models.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ImportRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		r := *m.runs[i]
		r.Logs = nil
		out = append(out, r)
	}
	if offset >= len(out) {
		return []models.ImportRun{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRunStore) GetRun(_ context.Context, id uuid.UUID) (*models.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrRunNotFound
}
