package services

import (
	"context"
	"testing"

	"cctv-survey/internal/models"
)

func seedBOQs(t *testing.T, env *testEnv) seeded {
	t.Helper()
	ids := env.seedPune()
	satara := env.srv.Seed(CollectionDivisions, map[string]any{"name": "Satara"})[0]
	otherStand := env.srv.Seed(CollectionBusStands, map[string]any{"name": "Gate 1 (Karad - Karad Station)", "division": satara})[0]

	env.srv.Seed(CollectionBOQs,
		map[string]any{
			"division": ids.division, "depot": ids.depot, "bus_station": ids.station, "bus_stand": ids.stand,
			"camera_selection": []any{map[string]any{"camera": ids.camera, "count": 4}},
			"nvr_selection":    []any{map[string]any{"nvr": ids.nvr, "count": 1}},
		},
		map[string]any{
			"division": satara, "bus_stand": otherStand,
			"camera_selection": []any{map[string]any{"camera": ids.camera, "count": 2}},
		},
	)
	return ids
}

func TestBOQService_ListComputesCost(t *testing.T) {
	env := newTestEnv(t)
	seedBOQs(t, env)
	svc := NewBOQService(env.client)

	resp, err := svc.List(context.Background(), BOQListParams{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(resp.Data) != 2 || resp.Pagination.Total != 2 || resp.Pagination.PageSize != 10 {
		t.Fatalf("unexpected page: %+v", resp.Pagination)
	}
	if resp.PageTotal != 10000+15000.5+5000 {
		t.Errorf("unexpected page total %v", resp.PageTotal)
	}
	for _, rec := range resp.Data {
		if rec.Cost == 0 {
			t.Errorf("record %d has no cost", rec.ID)
		}
		if rec.Division == nil {
			t.Errorf("record %d division not populated", rec.ID)
		}
	}
}

func TestBOQService_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	seedBOQs(t, env)
	svc := NewBOQService(env.client)

	tests := []struct {
		name   string
		params BOQListParams
		want   int
	}{
		{"search stand name", BOQListParams{Search: "gate 1"}, 1},
		{"search no match", BOQListParams{Search: "Hadapsar"}, 0},
		{"division filter", BOQListParams{Divisions: []string{"Pune"}}, 1},
		{"two divisions", BOQListParams{Divisions: []string{"Pune", "Satara"}}, 2},
		{"page size", BOQListParams{PageSize: 1, Page: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.List(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(resp.Data) != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, len(resp.Data))
			}
		})
	}
}

func TestBOQService_GrandTotal(t *testing.T) {
	env := newTestEnv(t)
	seedBOQs(t, env)
	svc := NewBOQService(env.client)

	total, err := svc.GrandTotal(context.Background())
	if err != nil {
		t.Fatalf("GrandTotal() error = %v", err)
	}
	if total.Count != 2 || total.Total != 30000.5 {
		t.Errorf("unexpected total: %+v", total)
	}
	if total.Formatted != "₹30,000.50" {
		t.Errorf("unexpected formatted total %q", total.Formatted)
	}
}

func TestBOQService_RecordsAndDelete(t *testing.T) {
	env := newTestEnv(t)
	seedBOQs(t, env)
	svc := NewBOQService(env.client)
	ctx := context.Background()

	recs, err := svc.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	first := recs[0]
	if got := first.Selections[models.CategoryNVR]; len(got) != 1 || got[0].Item == nil || got[0].Item.Price != 15000.5 {
		t.Errorf("expected populated NVR selection, got %+v", got)
	}

	if err := svc.Delete(ctx, first.DocumentID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := env.srv.Count(CollectionBOQs); got != 1 {
		t.Errorf("expected 1 BOQ left, got %d", got)
	}
	if err := svc.Delete(ctx, first.DocumentID); err == nil {
		t.Error("expected error deleting a missing BOQ")
	}
}

func TestBOQPopulate(t *testing.T) {
	paths := BOQPopulate()
	if len(paths) != 4+len(models.Categories) {
		t.Fatalf("unexpected populate paths: %v", paths)
	}
	if paths[4] != "nvr_selection.nvr" {
		t.Errorf("expected nested selection populate, got %q", paths[4])
	}
}
