package http

import (
	"errors"
	"net/http"

	"despesas/internal/amqp"
	"despesas/internal/core"
)

// maxReceiptSize bounds uploaded receipt files to 5 MB.
const maxReceiptSize = 5 << 20

var allowedReceiptTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if s.files == nil {
		respondError(w, r, &core.StorageError{Op: "save", Err: errors.New("no receipt store configured")})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.NewValidationError("file", "arquivo não fornecido ou muito grande (max 5MB)"))
		return
	}
	defer file.Close()

	if header.Size > maxReceiptSize {
		respondError(w, r, core.NewValidationError("file", "arquivo muito grande (max 5MB)"))
		return
	}
	if !allowedReceiptTypes[header.Header.Get("Content-Type")] {
		respondError(w, r, core.NewValidationError("file", "tipo de arquivo não permitido (use JPG, PNG, GIF ou PDF)"))
		return
	}

	locator, err := s.files.Save(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, &core.StorageError{Op: "save", Err: err})
		return
	}

	updated, err := s.expenses.AttachReceipt(r.Context(), id, core.Receipt{
		Name: header.Filename,
		URL:  locator,
	})
	if err != nil {
		// Attaching to a missing expense leaves the stored file
		// orphaned; hand it to the cleanup path before failing.
		if errors.Is(err, core.ErrNotFound) {
			s.expenses.CleanupReceipt(r.Context(), id, locator, amqp.ReasonExpenseMissing)
		}
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleRemoveReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.expenses.DetachReceipt(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
