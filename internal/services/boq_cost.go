package services

import (
	"fmt"
	"strings"

	"cctv-survey/internal/models"

	"github.com/shopspring/decimal"
)

// CalculateCost sums price x count over every selection entry of every
// category. Missing items, prices or lists contribute nothing. Summation
// is exact, so entry order never changes the result.
func CalculateCost(rec *models.BOQRecord) float64 {
	if rec == nil {
		return 0
	}
	return recordCost(rec).InexactFloat64()
}

// GrandTotal is the sum of CalculateCost over recs.
func GrandTotal(recs []models.BOQRecord) float64 {
	total := decimal.Zero
	for i := range recs {
		total = total.Add(recordCost(&recs[i]))
	}
	return total.InexactFloat64()
}

func recordCost(rec *models.BOQRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range models.Categories {
		for _, e := range rec.Selections[c] {
			if e.Item == nil {
				continue
			}
			price := decimal.NewFromFloat(e.Item.Price)
			sum = sum.Add(price.Mul(decimal.NewFromInt(int64(e.Count))))
		}
	}
	return sum
}

// CategoryCounts totals the selected quantity per category of one record.
func CategoryCounts(rec *models.BOQRecord) map[models.Category]int {
	out := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		for _, e := range rec.Selections[c] {
			out[c] += e.Count
		}
	}
	return out
}

// FormatINR renders an amount in Indian grouping with two decimals,
// e.g. ₹1,23,45,678.90.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(raw, ".")

	return sign + "₹" + indianGrouping(intPart) + "." + decPart
}

// indianGrouping keeps the last three digits together, then groups by two.
func indianGrouping(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
