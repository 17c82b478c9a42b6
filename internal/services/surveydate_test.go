package services

import "testing"

func TestParseSurveyDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		opts DateOptions
		want string // "" means nil
	}{
		{"serial number", float64(45292), DefaultDateOptions, "2024-01-01"},
		{"serial int", 45366, DefaultDateOptions, "2024-03-15"},
		{"day first slash", "15/03/2024", DefaultDateOptions, "2024-03-15"},
		{"day first dash short", "5-3-24", DefaultDateOptions, "2024-03-05"},
		{"month first", "03/15/2024", DateOptions{Order: DateOrderMDY}, "2024-03-15"},
		{"iso", "2024-03-15", DefaultDateOptions, "2024-03-15"},
		{"iso under mdy", "2024-03-15", DateOptions{Order: DateOrderMDY}, "2024-03-15"},
		{"no range check", "31/02/2024", DefaultDateOptions, "2024-02-31"},
		{"written month", "15 Mar 2024", DefaultDateOptions, "2024-03-15"},
		{"long month", "March 15, 2024", DefaultDateOptions, "2024-03-15"},
		{"single digit day and month", "6/8/2025", DefaultDateOptions, "2025-08-06"},
		{"dashes two digit year", "06-08-25", DefaultDateOptions, "2025-08-06"},
		{"serial 45123", 45123, DefaultDateOptions, "2023-07-16"},
		{"serial as text", "45123", DefaultDateOptions, "2023-07-16"},
		{"not a date", "not a date", DefaultDateOptions, ""},
		{"garbage", "next tuesday", DefaultDateOptions, ""},
		{"two parts", "15/03", DefaultDateOptions, ""},
		{"empty", "", DefaultDateOptions, ""},
		{"nil", nil, DefaultDateOptions, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSurveyDate(tt.in, tt.opts)
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %q, got nil", tt.want)
			}
			if *got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, *got)
			}
		})
	}
}

func TestParseDateOrder(t *testing.T) {
	if ParseDateOrder("MDY") != DateOrderMDY {
		t.Error("expected MDY to parse as month-first")
	}
	for _, in := range []string{"", "dmy", "ymd", "garbage"} {
		if ParseDateOrder(in) != DateOrderDMY {
			t.Errorf("expected %q to default to day-first", in)
		}
	}
}
