package models

import (
	"bytes"
	"encoding/json"
)

// SelectionEntry references one catalog item with a positive count.
// It marshals as {"<ref>": id, "count": n}.
type SelectionEntry struct {
	Category Category
	ItemID   int
	Count    int
}

func (e SelectionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		e.Category.RefKey(): e.ItemID,
		"count":             e.Count,
	})
}

// BOQPayload is the creation body for one bill-of-quantities record.
type BOQPayload struct {
	Division   int
	Depot      int
	BusStation int
	BusStand   int
	SurveyDate *string
	Selections map[Category][]SelectionEntry
}

// MarshalJSON always emits all eleven selection lists, empty ones as [].
func (p BOQPayload) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"division":    p.Division,
		"depot":       p.Depot,
		"bus_station": p.BusStation,
		"bus_stand":   p.BusStand,
		"survey_date": p.SurveyDate,
	}
	for _, c := range Categories {
		entries := p.Selections[c]
		if entries == nil {
			entries = []SelectionEntry{}
		}
		out[c.SelectionField()] = entries
	}
	return json.Marshal(out)
}

// EntryCount returns the number of selection entries across all categories.
func (p BOQPayload) EntryCount() int {
	n := 0
	for _, entries := range p.Selections {
		n += len(entries)
	}
	return n
}

// PopulatedEntry is a selection entry read back with its item expanded.
// Item is nil when the reference was not populated or is dangling.
type PopulatedEntry struct {
	Item  *CatalogItem `json:"item"`
	Count int          `json:"count"`
}

// BOQRecord is a persisted BOQ as returned by a populated read.
type BOQRecord struct {
	ID         int                           `json:"id"`
	DocumentID string                        `json:"documentId,omitempty"`
	Division   *Division                     `json:"division,omitempty"`
	Depot      *Depot                        `json:"depot,omitempty"`
	BusStation *BusStation                   `json:"bus_station,omitempty"`
	BusStand   *BusStand                     `json:"bus_stand,omitempty"`
	SurveyDate *string                       `json:"survey_date"`
	Selections map[Category][]PopulatedEntry `json:"selections"`
	Cost       float64                       `json:"cost"`
}

func (r *BOQRecord) UnmarshalJSON(b []byte) error {
	var base struct {
		ID         int         `json:"id"`
		DocumentID string      `json:"documentId"`
		Division   *Division   `json:"division"`
		Depot      *Depot      `json:"depot"`
		BusStation *BusStation `json:"bus_station"`
		BusStand   *BusStand   `json:"bus_stand"`
		SurveyDate *string     `json:"survey_date"`
	}
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	r.ID = base.ID
	r.DocumentID = base.DocumentID
	r.Division = base.Division
	r.Depot = base.Depot
	r.BusStation = base.BusStation
	r.BusStand = base.BusStand
	r.SurveyDate = base.SurveyDate
	r.Selections = make(map[Category][]PopulatedEntry, len(Categories))

	for _, c := range Categories {
		raw, ok := fields[c.SelectionField()]
		if !ok || isNull(raw) {
			continue
		}
		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return err
		}
		list := make([]PopulatedEntry, 0, len(entries))
		for _, e := range entries {
			item, err := decodeItemRef(e[c.RefKey()])
			if err != nil {
				return err
			}
			list = append(list, PopulatedEntry{
				Item:  item,
				Count: int(flexFloat(e["count"])),
			})
		}
		r.Selections[c] = list
	}
	return nil
}

// decodeItemRef handles both a populated object and a bare id.
func decodeItemRef(raw json.RawMessage) (*CatalogItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	if raw[0] == '{' {
		var item CatalogItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		return &item, nil
	}
	id := int(flexFloat(raw))
	if id == 0 {
		return nil, nil
	}
	return &CatalogItem{ID: id}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
