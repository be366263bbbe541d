package http

import (
	"net/http"
	"strconv"
	"time"

	"despesas/internal/query"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, page, pageSize, err := parseListParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.expenses.List(r.Context(), filter, page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toPageResponse(result))
}

// parseListParams reads the list query string: dataInicio, dataFim,
// categoriaId, cartaoId, busca, pagina, itensPorPagina. Absent values leave
// the filter unconstrained.
func parseListParams(r *http.Request) (query.Filter, int, int, error) {
	q := r.URL.Query()
	var filter query.Filter

	if v := q.Get("dataInicio"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, 0, 0, err
		}
		filter.Start = &t
	}
	if v := q.Get("dataFim"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, 0, 0, err
		}
		// Inclusive upper bound: a bare date means the whole day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.End = &t
	}
	if v := q.Get("categoriaId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, 0, 0, errInvalidParam("categoriaId")
		}
		filter.CategoryID = &id
	}
	if v := q.Get("cartaoId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, 0, 0, errInvalidParam("cartaoId")
		}
		filter.CardID = &id
	}
	filter.Search = q.Get("busca")

	page := 1
	if v := q.Get("pagina"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, 0, 0, errInvalidParam("pagina")
		}
		page = n
	}
	pageSize := query.DefaultPageSize
	if v := q.Get("itensPorPagina"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, 0, 0, errInvalidParam("itensPorPagina")
		}
		pageSize = n
	}

	return filter, page, pageSize, nil
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	e, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateReports(created.Date)
	respondJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Fetch first so a date change invalidates both the old and the new
	// period's reports.
	existing, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, e)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateReports(existing.Date, updated.Date)
	respondJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	existing, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateReports(existing.Date)
	w.WriteHeader(http.StatusNoContent)
}
