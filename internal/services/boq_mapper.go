package services

import (
	"fmt"
	"strings"

	"cctv-survey/internal/models"
)

// RowRejection explains why a BOQ row was skipped.
type RowRejection struct {
	Field    string
	Value    string
	Expected string // composite bus stand name, when Field is "busstand"
}

func (e *RowRejection) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is missing", e.Field)
	}
	if e.Expected != "" {
		return fmt.Sprintf("%s %q not found (expected bus stand named %q)", e.Field, e.Value, e.Expected)
	}
	return fmt.Sprintf("%s %q not found", e.Field, e.Value)
}

// BOQMapper turns spreadsheet rows into BOQ creation payloads.
type BOQMapper struct {
	Dates DateOptions
}

// MapRowToBOQ maps a row with the default day-first date reading.
func MapRowToBOQ(row Row, refs *ReferenceData) (*models.BOQPayload, error) {
	return BOQMapper{Dates: DefaultDateOptions}.Map(row, refs)
}

// Map resolves the four location references and builds the eleven
// selection lists. Row keys must be lower-cased and trimmed. It returns a
// *RowRejection and no payload when any location fails to resolve.
func (m BOQMapper) Map(row Row, refs *ReferenceData) (*models.BOQPayload, error) {
	divisionName := cellString(row["division"])
	depotName := cellString(row["depot"])
	stationName := cellString(row["busstation"])
	standName := cellString(row["busstand"])

	division, ok := findByName(refs.Divisions, func(d models.Division) string { return d.Name },
		divisionName, boqFieldMatch["division"])
	if !ok || divisionName == "" {
		return nil, &RowRejection{Field: "division", Value: divisionName}
	}

	depot, ok := findByName(refs.Depots, func(d models.Depot) string { return d.Name },
		depotName, boqFieldMatch["depot"])
	if !ok || depotName == "" {
		return nil, &RowRejection{Field: "depot", Value: depotName}
	}

	station, ok := findByName(refs.BusStations, func(b models.BusStation) string { return b.Name },
		stationName, boqFieldMatch["busstation"])
	if !ok || stationName == "" {
		return nil, &RowRejection{Field: "busstation", Value: stationName}
	}

	if standName == "" {
		return nil, &RowRejection{Field: "busstand", Value: standName}
	}
	expected := models.BusStandDisplayName(standName, depotName, stationName)
	stand, ok := findByName(refs.BusStands, func(b models.BusStand) string { return b.Name },
		expected, boqFieldMatch["busstand"])
	if !ok {
		return nil, &RowRejection{Field: "busstand", Value: standName, Expected: expected}
	}

	payload := &models.BOQPayload{
		Division:   division.ID,
		Depot:      depot.ID,
		BusStation: station.ID,
		BusStand:   stand.ID,
		SurveyDate: ParseSurveyDate(row["surveydate"], m.Dates),
		Selections: make(map[models.Category][]models.SelectionEntry, len(models.Categories)),
	}

	for _, c := range models.Categories {
		payload.Selections[c] = buildSelections(c, refs.Catalogs[c], row)
	}

	return payload, nil
}

// buildSelections emits one entry per catalog item whose column holds a
// positive count. Fractional counts are truncated; zero, missing and
// non-numeric cells are omitted.
func buildSelections(c models.Category, items []models.CatalogItem, row Row) []models.SelectionEntry {
	entries := []models.SelectionEntry{}
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if key == "" {
			continue
		}
		n, ok := cellNumber(row[key])
		if !ok || n <= 0 {
			continue
		}
		count := int(n)
		if count <= 0 {
			continue
		}
		entries = append(entries, models.SelectionEntry{Category: c, ItemID: item.ID, Count: count})
	}
	return entries
}
