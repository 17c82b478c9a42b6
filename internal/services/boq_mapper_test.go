package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cctv-survey/internal/models"
)

func TestMapRowToBOQ_ResolvesLocationsAndSelections(t *testing.T) {
	refs := puneRefs()
	row := validBOQRow("Stand A")
	row["bullet camera"] = "2"
	row["cat6 cable"] = float64(0)

	payload, err := MapRowToBOQ(row, refs)
	if err != nil {
		t.Fatalf("MapRowToBOQ() error = %v", err)
	}

	if payload.Division != 1 || payload.Depot != 2 || payload.BusStation != 3 || payload.BusStand != 4 {
		t.Errorf("unexpected location ids: %+v", payload)
	}
	if payload.SurveyDate == nil || *payload.SurveyDate != "2024-03-15" {
		t.Errorf("expected survey date 2024-03-15, got %v", payload.SurveyDate)
	}

	cams := payload.Selections[models.CategoryCamera]
	if len(cams) != 2 {
		t.Fatalf("expected 2 camera entries, got %d", len(cams))
	}
	if cams[0].ItemID != 20 || cams[0].Count != 4 {
		t.Errorf("unexpected dome camera entry: %+v", cams[0])
	}
	if cams[1].ItemID != 21 || cams[1].Count != 2 {
		t.Errorf("unexpected bullet camera entry: %+v", cams[1])
	}
	if got := len(payload.Selections[models.CategoryCable]); got != 0 {
		t.Errorf("zero count must be omitted, got %d cable entries", got)
	}
	if payload.EntryCount() != 3 {
		t.Errorf("expected 3 entries, got %d", payload.EntryCount())
	}
}

func TestMapRowToBOQ_NormalizesNames(t *testing.T) {
	row := validBOQRow("  stand   a ")
	row["division"] = " PUNE"
	row["depot"] = "swargate  "
	row["busstation"] = "SWARGATE   station"

	payload, err := MapRowToBOQ(row, puneRefs())
	if err != nil {
		t.Fatalf("MapRowToBOQ() error = %v", err)
	}
	if payload.BusStand != 4 {
		t.Errorf("expected bus stand 4, got %d", payload.BusStand)
	}
}

func TestMapRowToBOQ_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(Row)
		field    string
		contains string
	}{
		{"unknown division", func(r Row) { r["division"] = "Nagpur" }, "division", `"Nagpur" not found`},
		{"missing division", func(r Row) { delete(r, "division") }, "division", "is missing"},
		{"unknown depot", func(r Row) { r["depot"] = "Hadapsar" }, "depot", "not found"},
		{"unknown station", func(r Row) { r["busstation"] = "Katraj" }, "busstation", "not found"},
		{"missing stand", func(r Row) { delete(r, "busstand") }, "busstand", "is missing"},
		{"unknown stand", func(r Row) { r["busstand"] = "Stand Z" }, "busstand", "Stand Z (Swargate - Swargate Station)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validBOQRow("Stand A")
			tt.mutate(row)

			payload, err := MapRowToBOQ(row, puneRefs())
			if payload != nil {
				t.Errorf("expected no payload, got %+v", payload)
			}
			var rej *RowRejection
			if !errors.As(err, &rej) {
				t.Fatalf("expected *RowRejection, got %v", err)
			}
			if rej.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, rej.Field)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestMapRowToBOQ_CountHandling(t *testing.T) {
	tests := []struct {
		name  string
		cell  any
		count int // 0 means omitted
	}{
		{"integer", float64(3), 3},
		{"fraction truncated", float64(2.9), 2},
		{"below one omitted", float64(0.5), 0},
		{"negative omitted", float64(-2), 0},
		{"numeric text", "7", 7},
		{"fractional text truncated", "2.9", 2},
		{"exponent text omitted", "1e3", 0},
		{"non numeric omitted", "many", 0},
		{"empty omitted", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validBOQRow("Stand A")
			delete(row, "dome camera")
			if tt.cell != nil {
				row["dome camera"] = tt.cell
			}

			payload, err := MapRowToBOQ(row, puneRefs())
			if err != nil {
				t.Fatalf("MapRowToBOQ() error = %v", err)
			}
			var got int
			for _, e := range payload.Selections[models.CategoryCamera] {
				if e.ItemID == 20 {
					got = e.Count
				}
			}
			if got != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, got)
			}
		})
	}
}

func TestBOQPayloadJSON_EmitsEveryCategory(t *testing.T) {
	payload, err := MapRowToBOQ(validBOQRow("Stand A"), puneRefs())
	if err != nil {
		t.Fatalf("MapRowToBOQ() error = %v", err)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, c := range models.Categories {
		raw, ok := body[c.SelectionField()]
		if !ok {
			t.Errorf("missing %s", c.SelectionField())
			continue
		}
		if string(raw) == "null" {
			t.Errorf("%s must be a list, got null", c.SelectionField())
		}
	}
	if string(body["camera_selection"]) != `[{"camera":20,"count":4}]` {
		t.Errorf("unexpected camera_selection: %s", body["camera_selection"])
	}
	if string(body["bus_stand"]) != "4" {
		t.Errorf("unexpected bus_stand: %s", body["bus_stand"])
	}
}

func TestBOQMapper_MonthFirstDates(t *testing.T) {
	row := validBOQRow("Stand A")
	row["surveydate"] = "03/15/2024"

	payload, err := BOQMapper{Dates: DateOptions{Order: DateOrderMDY}}.Map(row, puneRefs())
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if payload.SurveyDate == nil || *payload.SurveyDate != "2024-03-15" {
		t.Errorf("expected 2024-03-15, got %v", payload.SurveyDate)
	}
}
