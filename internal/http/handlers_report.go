package http

import (
	"log/slog"
	"net/http"

	applog "despesas/internal/log"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := periodKey(year, month)
	if cached, ok := s.monthlyCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Monthly summary cache hit", applog.FieldYear, year, applog.FieldMonth, month)
		respondJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.reports.MonthlySummary(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.monthlyCache.Set(key, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAnnualSummary(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := yearKey(year)
	if cached, ok := s.annualCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Annual summary cache hit", applog.FieldYear, year)
		respondJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.reports.AnnualSummary(r.Context(), year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.annualCache.Set(key, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := periodKey(year, month)
	if cached, ok := s.comparisonCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	comparison, err := s.reports.Comparison(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.comparisonCache.Set(key, comparison)
	respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleAnnualEvolution(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := yearKey(year)
	if cached, ok := s.evolutionCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	evolution, err := s.reports.Evolution(r.Context(), year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.evolutionCache.Set(key, evolution)
	respondJSON(w, http.StatusOK, evolution)
}
