package core

import (
	"strings"
	"time"
)

// Defaults applied when a category is created without display hints.
const (
	DefaultCategoryColor = "#6366f1"
	DefaultCategoryIcon  = "receipt"
)

// Field length limits, enforced at the write boundary.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 200
	MaxNoteLen        = 500
)

type (
	// Category is a user-defined classification label for expenses.
	// Categories are never hard-deleted; "delete" flips Active to false so
	// historical expenses keep a valid reference.
	Category struct {
		ID        int64
		Name      string
		Color     string
		Icon      string
		Active    bool
		CreatedAt time.Time
	}

	// Card is an optional payment-instrument tag. Limit is in cents and
	// absent when nil. Same soft-delete lifecycle as Category.
	Card struct {
		ID        int64
		Name      string
		Limit     *Money
		Active    bool
		CreatedAt time.Time
	}

	// Receipt is the proof-of-purchase file reference attached to at most
	// one expense. Name and URL are always written and cleared as a pair.
	Receipt struct {
		Name string
		URL  string
	}

	// Expense is a single dated monetary transaction. CategoryName,
	// CategoryColor and CardName are denormalized display fields filled by
	// the store join; they are not authoritative.
	Expense struct {
		ID          int64
		Description string
		Amount      Money
		Date        time.Time
		Note        string
		Receipt     *Receipt
		CategoryID  int64
		CardID      *int64
		CreatedAt   time.Time
		UpdatedAt   *time.Time

		CategoryName  string
		CategoryColor string
		CardName      *string
	}
)

// Validate checks the writable fields of an expense. Reference resolution
// (category/card existence) is the service layer's job.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return NewValidationError("descricao", "required")
	}
	if len(e.Description) > MaxDescriptionLen {
		return NewValidationError("descricao", "too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return NewValidationError("valor", "must be zero or positive")
	}
	if e.Date.IsZero() {
		return NewValidationError("data", "required")
	}
	if len(e.Note) > MaxNoteLen {
		return NewValidationError("observacao", "too long (max 500 characters)")
	}
	if e.CategoryID <= 0 {
		return NewValidationError("categoriaId", "required")
	}
	return nil
}

// Validate checks category fields before a write.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("nome", "required")
	}
	if len(c.Name) > MaxNameLen {
		return NewValidationError("nome", "too long (max 100 characters)")
	}
	return nil
}

// Validate checks card fields before a write.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("nome", "required")
	}
	if len(c.Name) > MaxNameLen {
		return NewValidationError("nome", "too long (max 100 characters)")
	}
	if c.Limit != nil && c.Limit.Cents < 0 {
		return NewValidationError("limite", "must be zero or positive")
	}
	return nil
}

// HasReceipt reports whether the expense carries a receipt pair.
func (e Expense) HasReceipt() bool {
	return e.Receipt != nil && e.Receipt.URL != ""
}

// InMonth reports whether the expense date falls in the given calendar month
// (UTC, matching how dates are stored).
func (e Expense) InMonth(year, month int) bool {
	d := e.Date.UTC()
	return d.Year() == year && int(d.Month()) == month
}

// InYear reports whether the expense date falls in the given year (UTC).
func (e Expense) InYear(year int) bool {
	return e.Date.UTC().Year() == year
}
