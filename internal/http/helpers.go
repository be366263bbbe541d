package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"despesas/internal/core"
	applog "despesas/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"campo,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

// respondError maps the error taxonomy to status codes: missing records are
// 404, caller mistakes 422, everything else a logged 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "registro não encontrado"})
		return
	}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Msg, Field: ve.Field})
		return
	}

	var re *core.ReferentialError
	if errors.As(err, &re) {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: re.Error()})
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "erro interno"})
}

// pathID parses the {id} path segment; a non-positive or malformed value is
// treated the same as a missing record.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// pathYearMonth parses {ano} and {mes}, validating the month range at the
// boundary the way the reference API does.
func pathYearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.PathValue("ano"))
	if err != nil {
		return 0, 0, core.NewValidationError("ano", "must be a number")
	}
	month, err := strconv.Atoi(r.PathValue("mes"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, core.NewValidationError("mes", "must be between 1 and 12")
	}
	return year, month, nil
}

func pathYear(r *http.Request) (int, error) {
	year, err := strconv.Atoi(r.PathValue("ano"))
	if err != nil {
		return 0, core.NewValidationError("ano", "must be a number")
	}
	return year, nil
}

func errInvalidParam(name string) error {
	return core.NewValidationError(name, "must be a number")
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError("body", "malformed JSON")
	}
	return nil
}
