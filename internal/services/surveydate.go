package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateOrder is how a d/m/y-style survey date string is read. The source
// sheets are filled in day-first; month-first is available as a setting
// but never inferred.
type DateOrder string

const (
	DateOrderDMY DateOrder = "dmy"
	DateOrderMDY DateOrder = "mdy"
)

type DateOptions struct {
	Order    DateOrder
	Date1904 bool // serial dates use the 1904 epoch
}

var DefaultDateOptions = DateOptions{Order: DateOrderDMY}

// ParseDateOrder maps a config value to a DateOrder, defaulting to day-first.
func ParseDateOrder(s string) DateOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(DateOrderMDY)) {
		return DateOrderMDY
	}
	return DateOrderDMY
}

var (
	dateSeparators = regexp.MustCompile(`[/-]`)
	digitsOnly     = regexp.MustCompile(`^\d+$`)
)

var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006.01.02",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Mon Jan 2 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 06",
}

// ParseSurveyDate converts a spreadsheet date cell into yyyy-MM-dd, or nil.
//
// Strings split on "/" or "-" into three numeric parts are read per
// opts.Order, a two-digit year gets the "20" prefix, and day/month are not
// range-checked. A leading four-digit part is read as ISO year-month-day.
// Numbers, and text that is a plain number, are spreadsheet serial dates.
// Anything else goes through a list of common layouts.
func ParseSurveyDate(v any, opts DateOptions) *string {
	if n, ok := v.(float64); ok {
		return serialDate(n, opts.Date1904)
	}
	if n, ok := v.(int); ok {
		return serialDate(float64(n), opts.Date1904)
	}

	s := cellString(v)
	if s == "" {
		return nil
	}

	if out, ok := splitDate(s, opts.Order); ok {
		return &out
	}
	if n, ok := cellNumber(s); ok {
		return serialDate(n, opts.Date1904)
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format("2006-01-02")
			return &out
		}
	}
	return nil
}

func serialDate(n float64, date1904 bool) *string {
	t, err := excelize.ExcelDateToTime(n, date1904)
	if err != nil {
		return nil
	}
	out := fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
	return &out
}

func splitDate(s string, order DateOrder) (string, bool) {
	parts := dateSeparators.Split(s, -1)
	if len(parts) != 3 {
		return "", false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if !digitsOnly.MatchString(parts[i]) {
			return "", false
		}
	}

	var day, month, year string
	switch {
	case len(parts[0]) == 4:
		year, month, day = parts[0], parts[1], parts[2]
	case order == DateOrderMDY:
		month, day, year = parts[0], parts[1], parts[2]
	default:
		day, month, year = parts[0], parts[1], parts[2]
	}

	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s-%s-%s", year, padTwo(month), padTwo(day)), true
}

func padTwo(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
