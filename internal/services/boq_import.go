package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cctv-survey/internal/models"
	"cctv-survey/internal/strapi"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BOQImportService maps an uploaded BOQ sheet row by row and persists one
// record per resolvable row.
type BOQImportService struct {
	client   *strapi.Client
	catalogs *CatalogService
	mapper   BOQMapper
	workers  int
	runs     RunStore
	logr     *zap.Logger
}

func NewBOQImportService(
	client *strapi.Client,
	catalogs *CatalogService,
	dates DateOptions,
	workers int,
	runs RunStore,
	logr *zap.Logger,
) *BOQImportService {
	if workers < 1 {
		workers = 1
	}
	if runs == nil {
		runs = NopRunStore{}
	}
	return &BOQImportService{
		client:   client,
		catalogs: catalogs,
		mapper:   BOQMapper{Dates: dates},
		workers:  workers,
		runs:     runs,
		logr:     logr,
	}
}

// Import reads the upload and runs the batch. Unreadable files and
// reference-data failures abort the batch; row problems never do.
func (s *BOQImportService) Import(ctx context.Context, r io.Reader, fileName string) (*ImportSummary, error) {
	sheet, err := ReadSheet(r, fileName)
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, sheet.Rows(true), fileName)
}

// ImportRows runs the batch over already-parsed rows (keys lower-cased).
func (s *BOQImportService) ImportRows(ctx context.Context, rows []SheetRow, fileName string) (*ImportSummary, error) {
	summary := newSummary(models.ImportKindBOQ, fileName)

	refs, err := s.catalogs.Load(ctx)
	if err != nil {
		s.logr.Error("boq import aborted: reference data unavailable", zap.Error(err))
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	logs := make([]RowLog, len(rows))

	// With one worker Go blocks until the previous row is persisted, so
	// rows are written strictly in order. Each goroutine only writes its
	// own slot and never returns an error, so one row cannot cancel another.
	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, row := range rows {
		payload, err := s.mapper.Map(row.Values, refs)
		if err != nil {
			logs[i] = RowLog{Row: row.Num, Status: RowSkipped, Message: err.Error()}
			s.logr.Warn("boq row skipped", zap.Int("row", row.Num), zap.String("reason", err.Error()))
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			logs[i] = RowLog{Row: row.Num, Status: RowFailed, Message: ctxErr.Error()}
			continue
		}

		i, row := i, row
		g.Go(func() error {
			logs[i] = s.persist(ctx, row.Num, payload)
			return nil
		})
	}
	_ = g.Wait()

	summary.finish(logs)

	if err := s.runs.SaveRun(ctx, summary); err != nil {
		s.logr.Error("failed to record import run", zap.Error(err), zap.String("run_id", summary.RunID.String()))
	}

	s.logr.Info("boq import finished",
		zap.String("run_id", summary.RunID.String()),
		zap.String("file", fileName),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (s *BOQImportService) persist(ctx context.Context, rowNum int, payload *models.BOQPayload) RowLog {
	var created struct {
		ID int `json:"id"`
	}
	if err := s.client.Create(ctx, CollectionBOQs, payload, &created); err != nil {
		s.logr.Error("boq row failed", zap.Int("row", rowNum), zap.Error(err))
		msg := err.Error()
		var apiErr *strapi.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		}
		return RowLog{Row: rowNum, Status: RowFailed, Message: "failed to save BOQ: " + msg}
	}

	s.logr.Info("boq row imported", zap.Int("row", rowNum), zap.Int("id", created.ID))
	return RowLog{
		Row:      rowNum,
		Status:   RowImported,
		Message:  fmt.Sprintf("created BOQ with %d item selections", payload.EntryCount()),
		RecordID: created.ID,
	}
}
