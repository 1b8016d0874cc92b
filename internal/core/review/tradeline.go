package review

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fintree/backoffice/internal/core/domain"
)

const (
	EMIPaid     = "paid"
	EMILate     = "late"
	EMIDisputed = "disputed"
	EMIMissing  = "-"
)

// HistoryRow is one year of a trade line's repayment grid, January first.
type HistoryRow struct {
	Year   string     `json:"year"`
	Months [12]string `json:"months"`
}

// HistoryByYear groups EMI records into yearly rows, newest year first.
// Records whose month is not "YYYY-MM" are skipped.
func HistoryByYear(records []domain.EMIRecord) []HistoryRow {
	byYear := make(map[string]*HistoryRow)
	for _, r := range records {
		year, month, ok := strings.Cut(r.Month, "-")
		if !ok || len(year) != 4 {
			continue
		}
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			continue
		}

		row, ok := byYear[year]
		if !ok {
			row = &HistoryRow{Year: year}
			for i := range row.Months {
				row.Months[i] = EMIMissing
			}
			byYear[year] = row
		}
		row.Months[m-1] = emiStatus(r)
	}

	out := make([]HistoryRow, 0, len(byYear))
	for _, row := range byYear {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

func emiStatus(r domain.EMIRecord) string {
	switch {
	case r.PaidOnTime:
		return EMIPaid
	case r.DelayDays > 0:
		return EMILate
	default:
		return EMIDisputed
	}
}
