package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"cctv-survey/internal/models"
)

func boqRows(rows ...Row) []SheetRow {
	out := make([]SheetRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, SheetRow{Num: i + 2, Values: r})
	}
	return out
}

func TestBOQImport_RowOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedPune()
	env.srv.FailCreates(CollectionBOQs, func(data map[string]any) bool {
		return data["survey_date"] == "2024-03-16"
	})

	good := validBOQRow("Stand A")
	unknown := validBOQRow("Stand A")
	unknown["division"] = "Nagpur"
	rejected := validBOQRow("Stand A")
	rejected["surveydate"] = "16/03/2024"

	runs := &MemoryRunStore{}
	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 1, runs, env.logr)

	summary, err := svc.ImportRows(context.Background(), boqRows(good, unknown, rejected), "survey.xlsx")
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}

	if summary.Total != 3 || summary.Succeeded != 1 || summary.Skipped != 1 || summary.Failed != 1 {
		t.Errorf("unexpected counts: total=%d ok=%d skipped=%d failed=%d",
			summary.Total, summary.Succeeded, summary.Skipped, summary.Failed)
	}

	wantStatus := []RowStatus{RowImported, RowSkipped, RowFailed}
	for i, l := range summary.Logs {
		if l.Row != i+2 {
			t.Errorf("log %d: expected row %d, got %d", i, i+2, l.Row)
		}
		if l.Status != wantStatus[i] {
			t.Errorf("log %d: expected %s, got %s (%s)", i, wantStatus[i], l.Status, l.Message)
		}
	}
	if !strings.Contains(summary.Logs[0].Message, "2 item selections") {
		t.Errorf("unexpected success message: %q", summary.Logs[0].Message)
	}
	if !strings.Contains(summary.Logs[1].Message, "Nagpur") {
		t.Errorf("unexpected skip message: %q", summary.Logs[1].Message)
	}
	if !strings.HasPrefix(summary.Logs[2].Message, "failed to save BOQ") {
		t.Errorf("unexpected failure message: %q", summary.Logs[2].Message)
	}

	if got := env.srv.Count(CollectionBOQs); got != 1 {
		t.Fatalf("expected 1 stored BOQ, got %d", got)
	}
	stored := env.srv.Records(CollectionBOQs)[0]
	if fmt.Sprint(stored["bus_stand"]) != fmt.Sprint(ids.stand) {
		t.Errorf("expected bus_stand %d, got %v", ids.stand, stored["bus_stand"])
	}
	cams, _ := stored["camera_selection"].([]any)
	if len(cams) != 1 {
		t.Fatalf("expected one camera entry, got %v", stored["camera_selection"])
	}
	cam := cams[0].(map[string]any)
	if fmt.Sprint(cam["camera"]) != fmt.Sprint(ids.camera) || fmt.Sprint(cam["count"]) != "4" {
		t.Errorf("unexpected camera entry: %v", cam)
	}
	if rack, ok := stored["rack_selection"].([]any); !ok || len(rack) != 0 {
		t.Errorf("expected empty rack_selection list, got %#v", stored["rack_selection"])
	}

	recorded, err := runs.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("run not recorded: %v", err)
	}
	if recorded.Kind != models.ImportKindBOQ || len(recorded.Logs) != 3 {
		t.Errorf("unexpected recorded run: %+v", recorded)
	}
}

func TestBOQImport_ConcurrentWorkersKeepRowOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedPune()

	var rows []Row
	for i := 0; i < 12; i++ {
		r := validBOQRow("Stand A")
		r["dome camera"] = float64(i + 1)
		if i%4 == 3 {
			r["busstand"] = "Nowhere"
		}
		rows = append(rows, r)
	}

	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 4, nil, env.logr)
	summary, err := svc.ImportRows(context.Background(), boqRows(rows...), "survey.csv")
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}

	for i, l := range summary.Logs {
		if l.Row != i+2 {
			t.Fatalf("logs out of order at %d: row %d", i, l.Row)
		}
		want := RowImported
		if i%4 == 3 {
			want = RowSkipped
		}
		if l.Status != want {
			t.Errorf("row %d: expected %s, got %s", l.Row, want, l.Status)
		}
	}
	if summary.Succeeded != 9 || summary.Skipped != 3 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if got := env.srv.Count(CollectionBOQs); got != 9 {
		t.Errorf("expected 9 stored BOQs, got %d", got)
	}
}

func TestBOQImport_ReferenceDataFailureAbortsBatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedPune()
	env.srv.FailLists("cameras")

	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 1, nil, env.logr)
	summary, err := svc.ImportRows(context.Background(), boqRows(validBOQRow("Stand A")), "survey.csv")
	if err == nil {
		t.Fatal("expected batch error")
	}
	if summary != nil {
		t.Errorf("expected no summary, got %+v", summary)
	}
	if !strings.Contains(err.Error(), "camera") {
		t.Errorf("expected error to name the camera catalog, got %v", err)
	}
	if got := env.srv.Count(CollectionBOQs); got != 0 {
		t.Errorf("expected nothing stored, got %d", got)
	}
}

func TestBOQImport_CancelledContextAbortsBatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedPune()
	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 1, nil, env.logr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ImportRows(ctx, boqRows(validBOQRow("Stand A")), "survey.csv"); err == nil {
		t.Fatal("expected error when reference data cannot be loaded")
	}
	if got := env.srv.Count(CollectionBOQs); got != 0 {
		t.Errorf("expected nothing stored, got %d", got)
	}
}

func TestBOQImport_FromCSV(t *testing.T) {
	env := newTestEnv(t)
	env.seedPune()
	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 1, nil, env.logr)

	csv := "Division,Depot,BusStation,BusStand,SurveyDate,Dome Camera,NVR 16CH\n" +
		"Pune,Swargate,Swargate Station,Stand A,2024-03-15,2,1\n"
	summary, err := svc.Import(context.Background(), strings.NewReader(csv), "survey.csv")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected 1 imported row, got %+v", summary.Logs)
	}
	stored := env.srv.Records(CollectionBOQs)[0]
	if stored["survey_date"] != "2024-03-15" {
		t.Errorf("unexpected survey_date %v", stored["survey_date"])
	}
}

func TestBOQImport_UnsupportedFile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewBOQImportService(env.client, env.catalogs, DefaultDateOptions, 1, nil, env.logr)
	if _, err := svc.Import(context.Background(), strings.NewReader("x"), "legacy.xls"); err == nil {
		t.Fatal("expected error for .xls upload")
	}
}
