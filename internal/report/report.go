// Package report implements the aggregation engine: period totals, category
// breakdowns with percentage-of-total, and period-over-period comparisons.
// All functions are pure over an expense slice; callers scope the slice by
// fetching the relevant date window from the store.
//
// Percentages are computed with fixed-point decimal arithmetic and rounded
// to two places using banker's rounding (round half to even), matching the
// rounding behavior of the reference system.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

// MonthNames holds the localized (pt-BR) month names, index 0 = janeiro.
var MonthNames = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the localized name for a month in 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return MonthNames[month-1]
}

type (
	// CategorySpend is one row of a per-category breakdown.
	CategorySpend struct {
		CategoryID    int64      `json:"categoriaId"`
		CategoryName  string     `json:"categoriaNome"`
		CategoryColor string     `json:"categoriaCor"`
		Total         core.Money `json:"total"`
		Count         int        `json:"quantidade"`
		Percentage    float64    `json:"percentual"`
	}

	// MonthSpend is one entry of the month-by-month evolution series.
	MonthSpend struct {
		Month     int        `json:"mes"`
		MonthName string     `json:"mesNome"`
		Total     core.Money `json:"total"`
		Count     int        `json:"quantidade"`
	}

	// MonthlySummary aggregates one calendar month.
	MonthlySummary struct {
		Year       int             `json:"ano"`
		Month      int             `json:"mes"`
		Total      core.Money      `json:"total"`
		Count      int             `json:"quantidadeDespesas"`
		ByCategory []CategorySpend `json:"porCategoria"`
	}

	// AnnualSummary aggregates a full year, with both the 12-month series
	// and the category breakdown.
	AnnualSummary struct {
		Year       int             `json:"ano"`
		Total      core.Money      `json:"total"`
		Count      int             `json:"quantidadeDespesas"`
		ByMonth    []MonthSpend    `json:"porMes"`
		ByCategory []CategorySpend `json:"porCategoria"`
	}

	// MonthlyComparison compares one month against its immediate
	// predecessor, wrapping the year boundary.
	MonthlyComparison struct {
		Year          int        `json:"anoAtual"`
		Month         int        `json:"mesAtual"`
		Total         core.Money `json:"totalAtual"`
		PreviousYear  int        `json:"anoAnterior"`
		PreviousMonth int        `json:"mesAnterior"`
		PreviousTotal core.Money `json:"totalAnterior"`
		Difference    core.Money `json:"diferenca"`
		Variation     float64    `json:"percentualVariacao"`
	}
)

// Monthly summarizes the expenses whose date falls within the given calendar
// month. The breakdown is ordered by subtotal descending.
func Monthly(expenses []core.Expense, year, month int) MonthlySummary {
	var scoped []core.Expense
	for _, e := range expenses {
		if e.InMonth(year, month) {
			scoped = append(scoped, e)
		}
	}
	total, count := sum(scoped)
	return MonthlySummary{
		Year:       year,
		Month:      month,
		Total:      total,
		Count:      count,
		ByCategory: breakdown(scoped, total),
	}
}

// Annual summarizes a full year: total, count, a 12-element month series
// (months without activity report zero) and the category breakdown.
func Annual(expenses []core.Expense, year int) AnnualSummary {
	var scoped []core.Expense
	for _, e := range expenses {
		if e.InYear(year) {
			scoped = append(scoped, e)
		}
	}
	total, count := sum(scoped)
	return AnnualSummary{
		Year:       year,
		Total:      total,
		Count:      count,
		ByMonth:    Evolution(scoped, year),
		ByCategory: breakdown(scoped, total),
	}
}

// Evolution returns the fixed 12-entry month-by-month series for a year.
func Evolution(expenses []core.Expense, year int) []MonthSpend {
	series := make([]MonthSpend, 12)
	for m := 1; m <= 12; m++ {
		series[m-1] = MonthSpend{Month: m, MonthName: MonthName(m)}
	}
	for _, e := range expenses {
		if !e.InYear(year) {
			continue
		}
		m := int(e.Date.UTC().Month())
		series[m-1].Total.Cents += e.Amount.Cents
		series[m-1].Count++
	}
	return series
}

// Comparison computes the given month's total against the immediately
// preceding calendar month. January compares against December of year-1.
// Variation is 100 when the previous total is zero and the current is
// positive, 0 when both are zero.
func Comparison(expenses []core.Expense, year, month int) MonthlyComparison {
	prevYear, prevMonth := year, month-1
	if month == 1 {
		prevYear, prevMonth = year-1, 12
	}

	var current, previous core.Money
	for _, e := range expenses {
		switch {
		case e.InMonth(year, month):
			current.Cents += e.Amount.Cents
		case e.InMonth(prevYear, prevMonth):
			previous.Cents += e.Amount.Cents
		}
	}

	diff := core.Money{Cents: current.Cents - previous.Cents}

	var variation float64
	switch {
	case previous.Cents > 0:
		variation, _ = diff.Decimal().
			Div(previous.Decimal()).
			Mul(decimal.NewFromInt(100)).
			RoundBank(2).
			Float64()
	case current.Cents > 0:
		variation = 100
	}

	return MonthlyComparison{
		Year:          year,
		Month:         month,
		Total:         current,
		PreviousYear:  prevYear,
		PreviousMonth: prevMonth,
		PreviousTotal: previous,
		Difference:    diff,
		Variation:     variation,
	}
}

func sum(expenses []core.Expense) (core.Money, int) {
	var total core.Money
	for _, e := range expenses {
		total.Cents += e.Amount.Cents
	}
	return total, len(expenses)
}

// breakdown groups the expenses by category and computes each group's share
// of the total. Percentage is zero when the total is zero.
func breakdown(expenses []core.Expense, total core.Money) []CategorySpend {
	byID := make(map[int64]*CategorySpend)
	var order []int64
	for _, e := range expenses {
		row, ok := byID[e.CategoryID]
		if !ok {
			row = &CategorySpend{
				CategoryID:    e.CategoryID,
				CategoryName:  e.CategoryName,
				CategoryColor: e.CategoryColor,
			}
			byID[e.CategoryID] = row
			order = append(order, e.CategoryID)
		}
		row.Total.Cents += e.Amount.Cents
		row.Count++
	}

	rows := make([]CategorySpend, 0, len(order))
	for _, id := range order {
		row := *byID[id]
		row.Percentage = percentage(row.Total, total)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.Cents > rows[j].Total.Cents
	})
	return rows
}

// percentage returns part/total*100 rounded to two places (banker's
// rounding), or 0 when total is zero.
func percentage(part, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	v, _ := part.Decimal().
		Div(total.Decimal()).
		Mul(decimal.NewFromInt(100)).
		RoundBank(2).
		Float64()
	return v
}
