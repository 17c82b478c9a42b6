package services

import (
	"bytes"
	"fmt"

	"cctv-survey/internal/models"

	"github.com/xuri/excelize/v2"
)

// BOQTemplateLocationColumns lead every BOQ template, before the catalog items.
var BOQTemplateLocationColumns = []string{"division", "depot", "busStation", "busStand", "surveyDate"}

// LocationTemplateColumns is the header row the bulk location importer reads.
var LocationTemplateColumns = []string{"division", "depot", "busStation", "busStand", "Address", "Latitude", "Longitude"}

// BOQTemplateHeaders lists the template columns: the location columns,
// then every catalog item name category by category.
func BOQTemplateHeaders(refs *ReferenceData) []string {
	headers := append([]string{}, BOQTemplateLocationColumns...)
	for _, c := range models.Categories {
		for _, item := range refs.Catalogs[c] {
			headers = append(headers, item.Name)
		}
	}
	return headers
}

// GenerateBOQTemplate builds the single-header-row BOQ upload template.
func GenerateBOQTemplate(refs *ReferenceData) ([]byte, error) {
	return headerOnlyWorkbook("BOQ", BOQTemplateHeaders(refs))
}

// GenerateLocationTemplate builds the bulk location upload template.
func GenerateLocationTemplate() ([]byte, error) {
	return headerOnlyWorkbook("Locations", LocationTemplateColumns)
}

// maxColWidth keeps long catalog names under excelize's 255 column limit.
const maxColWidth = 80

func headerOnlyWorkbook(sheet string, headers []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(headerStyle("#1D4ED8"))
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return nil, err
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := min(max(float64(len(h))*1.2, 12), maxColWidth)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	return writeWorkbook(f)
}

// GenerateImportReport renders a run's row log as a spreadsheet.
func GenerateImportReport(run *models.ImportRun) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Import Log"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(headerStyle("#DC2626"))
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Row #", "Status", "Message"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", style); err != nil {
		return nil, err
	}
	for col, width := range map[string]float64{"A": 8, "B": 12, "C": 80} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	for i, l := range run.Logs {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{l.Row, l.Status, l.Message}); err != nil {
			return nil, fmt.Errorf("report row %d: %w", l.Row, err)
		}
	}

	summaryRow := len(run.Logs) + 3
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", summaryRow), &[]any{
		"Total", run.Total,
		fmt.Sprintf("succeeded %d, skipped %d, failed %d", run.Succeeded, run.Skipped, run.Failed),
	}); err != nil {
		return nil, err
	}

	return writeWorkbook(f)
}

// ExportBOQs writes one line per record: location, per-category quantity and cost.
func ExportBOQs(records []models.BOQRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "BOQs"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headers := []any{"ID", "Division", "Depot", "Bus Station", "Bus Stand", "Survey Date"}
	for _, c := range models.Categories {
		headers = append(headers, c.SelectionField())
	}
	headers = append(headers, "Cost")

	style, err := f.NewStyle(headerStyle("#1D4ED8"))
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		counts := CategoryCounts(rec)
		row := []any{rec.ID, divisionName(rec), depotName(rec), stationName(rec), standName(rec), derefString(rec.SurveyDate)}
		for _, c := range models.Categories {
			row = append(row, counts[c])
		}
		row = append(row, CalculateCost(rec))

		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("export boq %d: %w", rec.ID, err)
		}
		costCell := fmt.Sprintf("%s%d", lastCol, i+2)
		if err := f.SetCellStyle(sheet, costCell, costCell, moneyStyle); err != nil {
			return nil, err
		}
	}

	totalRow := len(records) + 2
	totalCell := fmt.Sprintf("%s%d", lastCol, totalRow)
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Grand Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, totalCell, GrandTotal(records)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, totalCell, totalCell, moneyStyle); err != nil {
		return nil, err
	}

	return writeWorkbook(f)
}

func headerStyle(fill string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#D1D5DB", Style: 1},
			{Type: "top", Color: "#D1D5DB", Style: 1},
			{Type: "right", Color: "#D1D5DB", Style: 1},
			{Type: "bottom", Color: "#D1D5DB", Style: 1},
		},
	}
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func divisionName(r *models.BOQRecord) string {
	if r.Division == nil {
		return ""
	}
	return r.Division.Name
}

func depotName(r *models.BOQRecord) string {
	if r.Depot == nil {
		return ""
	}
	return r.Depot.Name
}

func stationName(r *models.BOQRecord) string {
	if r.BusStation == nil {
		return ""
	}
	return r.BusStation.Name
}

func standName(r *models.BOQRecord) string {
	if r.BusStand == nil {
		return ""
	}
	return r.BusStand.Name
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
