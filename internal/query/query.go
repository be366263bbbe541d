// Package query implements the ledger list view: conjunctive filtering,
// stable ordering and pagination over expense records. The engine is pure;
// it operates on an in-memory slice supplied by the store.
package query

import (
	"sort"
	"strings"
	"time"

	"despesas/internal/core"
)

// DefaultPageSize is applied when the caller supplies a non-positive size.
const DefaultPageSize = 20

// Filter is the optional predicate set for listing expenses. Nil fields do
// not constrain the result. All supplied predicates apply conjunctively.
type Filter struct {
	Start      *time.Time // inclusive
	End        *time.Time // inclusive
	CategoryID *int64
	CardID     *int64
	Search     string // case-insensitive substring of description or note
}

// Page is one slice of the filtered, ordered result set.
type Page struct {
	Items       []core.Expense
	TotalItems  int
	CurrentPage int
	TotalPages  int
}

// Matches reports whether the expense satisfies every supplied predicate.
func (f Filter) Matches(e core.Expense) bool {
	if f.Start != nil && e.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Date.After(*f.End) {
		return false
	}
	if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
		return false
	}
	if f.CardID != nil && (e.CardID == nil || *e.CardID != *f.CardID) {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		s = strings.ToLower(s)
		if !strings.Contains(strings.ToLower(e.Description), s) &&
			!strings.Contains(strings.ToLower(e.Note), s) {
			return false
		}
	}
	return true
}

// Apply returns the expenses matching the filter, ordered by date descending
// with creation timestamp descending as tie-break.
func Apply(expenses []core.Expense, f Filter) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Paginate slices the ordered set. Page numbers below 1 clamp to 1 and
// non-positive page sizes clamp to DefaultPageSize. A page past the end
// yields an empty item list with accurate totals.
func Paginate(items []core.Expense, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Items:       items[start:end],
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
}

// Run filters, orders and paginates in one step.
func Run(expenses []core.Expense, f Filter, page, pageSize int) Page {
	return Paginate(Apply(expenses, f), page, pageSize)
}
