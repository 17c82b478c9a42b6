package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: must be .xlsx or .csv")
	ErrEmptySheet        = errors.New("file must contain a header row and at least one data row")
)

// Row is one spreadsheet data row keyed by header. Cells hold their
// trimmed text exactly as read, so "01" stays "01"; empty cells are
// absent. Consumers that want a number parse it themselves.
type Row map[string]any

// SheetRow keeps the 1-based spreadsheet row number next to the values.
type SheetRow struct {
	Num    int
	Values Row
}

// Sheet is the first worksheet of an uploaded file.
type Sheet struct {
	Headers []string
	Cells   [][]string
}

// numericCell is a plain decimal: no exponent, no hex, no NaN/Inf.
var numericCell = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ReadSheet parses an .xlsx or .csv upload. Legacy .xls workbooks are not
// readable and are rejected with ErrUnsupportedFormat.
func ReadSheet(r io.Reader, fileName string) (*Sheet, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcel(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, fileName)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	headers := rows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	return &Sheet{Headers: headers, Cells: rows[1:]}, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Raw values keep date cells as serial numbers instead of formatted text
	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// Rows converts cells to keyed rows. With lowerKeys the headers are
// lower-cased; they are always trimmed. Columns with a blank header and
// rows with no values at all are dropped.
func (s *Sheet) Rows(lowerKeys bool) []SheetRow {
	keys := make([]string, len(s.Headers))
	for i, h := range s.Headers {
		k := strings.TrimSpace(h)
		if lowerKeys {
			k = strings.ToLower(k)
		}
		keys[i] = k
	}

	out := make([]SheetRow, 0, len(s.Cells))
	for idx, cells := range s.Cells {
		values := make(Row, len(keys))
		for col, key := range keys {
			if key == "" || col >= len(cells) {
				continue
			}
			if v := cellValue(cells[col]); v != nil {
				values[key] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, SheetRow{Num: idx + 2, Values: values})
	}
	return out
}

func cellValue(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return s
}

// cellString renders a cell as trimmed text.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// cellNumber reads a cell as a number; text must be a plain decimal.
func cellNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if !numericCell.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
