package services

import (
	"bytes"
	"strings"
	"testing"

	"cctv-survey/internal/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, b []byte) (*excelize.File, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return f, rows
}

func TestGenerateBOQTemplate(t *testing.T) {
	b, err := GenerateBOQTemplate(puneRefs())
	if err != nil {
		t.Fatalf("GenerateBOQTemplate() error = %v", err)
	}
	f, rows := openWorkbook(t, b)

	if f.GetSheetName(0) != "BOQ" {
		t.Errorf("expected sheet BOQ, got %q", f.GetSheetName(0))
	}
	if len(rows) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(rows))
	}
	want := []string{"division", "depot", "busStation", "busStand", "surveyDate", "NVR 16CH", "Dome Camera", "Bullet Camera", "CAT6 Cable"}
	if len(rows[0]) != len(want) {
		t.Fatalf("expected %d headers, got %v", len(want), rows[0])
	}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("header %d: expected %q, got %q", i, want[i], rows[0][i])
		}
	}
}

func TestBOQTemplateRoundTrip(t *testing.T) {
	refs := puneRefs()
	b, err := GenerateBOQTemplate(refs)
	if err != nil {
		t.Fatalf("GenerateBOQTemplate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	f.SetSheetRow("BOQ", "A2", &[]any{"Pune", "Swargate", "Swargate Station", "Stand A", "15/03/2024", 1, 4})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	sheet, err := ReadSheet(&buf, "filled.xlsx")
	if err != nil {
		t.Fatalf("ReadSheet() error = %v", err)
	}
	payload, err := MapRowToBOQ(sheet.Rows(true)[0].Values, refs)
	if err != nil {
		t.Fatalf("MapRowToBOQ() error = %v", err)
	}
	if payload.EntryCount() != 2 {
		t.Errorf("expected 2 selections, got %d", payload.EntryCount())
	}
}

func TestGenerateLocationTemplate(t *testing.T) {
	b, err := GenerateLocationTemplate()
	if err != nil {
		t.Fatalf("GenerateLocationTemplate() error = %v", err)
	}
	_, rows := openWorkbook(t, b)
	if len(rows) != 1 || len(rows[0]) != len(LocationTemplateColumns) {
		t.Fatalf("unexpected template rows: %v", rows)
	}
	if rows[0][2] != "busStation" || rows[0][4] != "Address" {
		t.Errorf("unexpected headers: %v", rows[0])
	}
}

func TestGenerateImportReport(t *testing.T) {
	run := &models.ImportRun{
		ID:        uuid.New(),
		Kind:      models.ImportKindBOQ,
		Total:     2,
		Succeeded: 1,
		Skipped:   1,
		Logs: []*models.ImportRowLog{
			{Row: 2, Status: "imported", Message: "created BOQ with 2 item selections"},
			{Row: 3, Status: "skipped", Message: `division "Nagpur" not found`},
		},
	}
	b, err := GenerateImportReport(run)
	if err != nil {
		t.Fatalf("GenerateImportReport() error = %v", err)
	}
	_, rows := openWorkbook(t, b)
	if rows[0][0] != "Row #" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[2][0] != "3" || rows[2][1] != "skipped" {
		t.Errorf("unexpected log row: %v", rows[2])
	}
	if rows[4][0] != "Total" || rows[4][1] != "2" {
		t.Errorf("unexpected summary row: %v", rows[4])
	}
}

func TestExportBOQs(t *testing.T) {
	recs := []models.BOQRecord{{
		ID:       7,
		Division: &models.Division{Name: "Pune"},
		BusStand: &models.BusStand{Name: "Stand A (Swargate - Swargate Station)"},
		Selections: map[models.Category][]models.PopulatedEntry{
			models.CategoryCamera: {entry(2500, 4)},
		},
	}}
	b, err := ExportBOQs(recs)
	if err != nil {
		t.Fatalf("ExportBOQs() error = %v", err)
	}
	f, rows := openWorkbook(t, b)
	if len(rows) != 3 {
		t.Fatalf("expected header, one record and total, got %d rows", len(rows))
	}
	if rows[1][1] != "Pune" || rows[1][7] != "4" {
		t.Errorf("unexpected record row: %v", rows[1])
	}
	if rows[2][0] != "Grand Total" {
		t.Errorf("unexpected total row: %v", rows[2])
	}

	lastCol, _ := excelize.ColumnNumberToName(6 + len(models.Categories) + 1)
	v, err := f.GetCellValue("BOQs", lastCol+"3", excelize.Options{RawCellValue: true})
	if err != nil || v != "10000" {
		t.Errorf("expected grand total 10000, got %q (%v)", v, err)
	}
}

func TestGenerateBOQTemplate_LongItemName(t *testing.T) {
	refs := puneRefs()
	long := strings.TrimSpace(strings.Repeat("Very Long Outdoor Junction Box ", 10))
	refs.Catalogs[models.CategoryWeatherproofBox] = []models.CatalogItem{{ID: 50, Name: long}}

	b, err := GenerateBOQTemplate(refs)
	if err != nil {
		t.Fatalf("GenerateBOQTemplate() error = %v", err)
	}
	f, rows := openWorkbook(t, b)

	idx := -1
	for i, h := range rows[0] {
		if h == long {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("long item missing from headers %v", rows[0])
	}
	col, _ := excelize.ColumnNumberToName(idx + 1)
	width, err := f.GetColWidth("BOQ", col)
	if err != nil {
		t.Fatalf("GetColWidth() error = %v", err)
	}
	if width > maxColWidth {
		t.Errorf("expected width capped at %d, got %v", maxColWidth, width)
	}
}

func TestHeaderOnlyWorkbook_InvalidSheetName(t *testing.T) {
	if _, err := headerOnlyWorkbook("BOQ/2024", []string{"division"}); err == nil {
		t.Error("expected an error for a sheet name excelize rejects")
	}
}
