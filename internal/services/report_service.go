package services

import (
	"context"
	"fmt"
	"time"

	"despesas/internal/core"
	"despesas/internal/report"
	"despesas/internal/storage"
)

// ReportService fetches the expense window a report needs and hands it to
// the aggregation engine. The engine itself never touches the store.
type ReportService struct {
	store *storage.Repository
}

func NewReportService(store *storage.Repository) *ReportService {
	return &ReportService{store: store}
}

// MonthlySummary aggregates one calendar month.
func (s *ReportService) MonthlySummary(ctx context.Context, year, month int) (report.MonthlySummary, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	expenses, err := s.store.ListExpensesBetween(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return report.MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	return report.Monthly(expenses, year, month), nil
}

// AnnualSummary aggregates one calendar year, with both the per-month series
// and the category breakdown.
func (s *ReportService) AnnualSummary(ctx context.Context, year int) (report.AnnualSummary, error) {
	expenses, err := s.yearWindow(ctx, year)
	if err != nil {
		return report.AnnualSummary{}, fmt.Errorf("annual summary: %w", err)
	}
	return report.Annual(expenses, year), nil
}

// Evolution returns the twelve-entry monthly series for a year, zero months
// included.
func (s *ReportService) Evolution(ctx context.Context, year int) ([]report.MonthSpend, error) {
	expenses, err := s.yearWindow(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("evolution: %w", err)
	}
	return report.Evolution(expenses, year), nil
}

// Comparison compares a month against the previous one, crossing the year
// boundary for January.
func (s *ReportService) Comparison(ctx context.Context, year, month int) (report.MonthlyComparison, error) {
	cur := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	expenses, err := s.store.ListExpensesBetween(ctx, cur.AddDate(0, -1, 0), cur.AddDate(0, 1, 0))
	if err != nil {
		return report.MonthlyComparison{}, fmt.Errorf("monthly comparison: %w", err)
	}
	return report.Comparison(expenses, year, month), nil
}

func (s *ReportService) yearWindow(ctx context.Context, year int) ([]core.Expense, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.store.ListExpensesBetween(ctx, from, from.AddDate(1, 0, 0))
}
