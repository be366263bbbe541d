package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/core"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func ptr[T any](v T) *T { return &v }

func marchLedger() []core.Expense {
	return []core.Expense{
		{ID: 1, Description: "Mercado", Amount: core.Money{Cents: 1000}, Date: date("2024-03-05"), CategoryID: 1, CreatedAt: date("2024-03-05")},
		{ID: 2, Description: "Farmácia", Amount: core.Money{Cents: 2000}, Date: date("2024-03-10"), CategoryID: 1, CreatedAt: date("2024-03-10")},
		{ID: 3, Description: "Restaurante", Amount: core.Money{Cents: 3000}, Date: date("2024-03-15"), CategoryID: 1, CreatedAt: date("2024-03-15")},
	}
}

func TestFilter_Matches(t *testing.T) {
	cardID := int64(7)
	e := core.Expense{
		ID:          1,
		Description: "Mercado do bairro",
		Note:        "compra da semana",
		Date:        date("2024-03-10"),
		CategoryID:  2,
		CardID:      &cardID,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "start inclusive", filter: Filter{Start: ptr(date("2024-03-10"))}, want: true},
		{name: "start excludes earlier", filter: Filter{Start: ptr(date("2024-03-11"))}, want: false},
		{name: "end inclusive", filter: Filter{End: ptr(date("2024-03-10"))}, want: true},
		{name: "end excludes later", filter: Filter{End: ptr(date("2024-03-09"))}, want: false},
		{name: "category match", filter: Filter{CategoryID: ptr(int64(2))}, want: true},
		{name: "category mismatch", filter: Filter{CategoryID: ptr(int64(3))}, want: false},
		{name: "card match", filter: Filter{CardID: ptr(int64(7))}, want: true},
		{name: "card mismatch", filter: Filter{CardID: ptr(int64(8))}, want: false},
		{name: "search in description", filter: Filter{Search: "mercado"}, want: true},
		{name: "search case-insensitive", filter: Filter{Search: "MERCADO"}, want: true},
		{name: "search in note", filter: Filter{Search: "semana"}, want: true},
		{name: "search no hit", filter: Filter{Search: "padaria"}, want: false},
		{name: "blank search ignored", filter: Filter{Search: "   "}, want: true},
		{name: "all predicates conjunctive", filter: Filter{
			Start:      ptr(date("2024-03-01")),
			End:        ptr(date("2024-03-31")),
			CategoryID: ptr(int64(2)),
			CardID:     ptr(int64(7)),
			Search:     "mercado",
		}, want: true},
		{name: "one failing predicate fails all", filter: Filter{
			Start:      ptr(date("2024-03-01")),
			CategoryID: ptr(int64(99)),
			Search:     "mercado",
		}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(e))
		})
	}
}

func TestFilter_CardFilterSkipsExpensesWithoutCard(t *testing.T) {
	e := core.Expense{ID: 1, Date: date("2024-03-10"), CategoryID: 1}
	assert.False(t, Filter{CardID: ptr(int64(7))}.Matches(e))
}

func TestApply_OrdersByDateDescending(t *testing.T) {
	out := Apply(marchLedger(), Filter{})

	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(2), out[1].ID)
	assert.Equal(t, int64(1), out[2].ID)
}

func TestApply_TieBreaksOnCreatedAt(t *testing.T) {
	d := date("2024-03-10")
	expenses := []core.Expense{
		{ID: 1, Date: d, CreatedAt: d.Add(1 * time.Hour)},
		{ID: 2, Date: d, CreatedAt: d.Add(3 * time.Hour)},
		{ID: 3, Date: d, CreatedAt: d.Add(2 * time.Hour)},
	}

	out := Apply(expenses, Filter{})

	require.Len(t, out, 3)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	assert.Equal(t, int64(1), out[2].ID)
}

func TestRun_Pagination(t *testing.T) {
	page1 := Run(marchLedger(), Filter{}, 1, 2)

	require.Len(t, page1.Items, 2)
	assert.Equal(t, date("2024-03-15"), page1.Items[0].Date)
	assert.Equal(t, date("2024-03-10"), page1.Items[1].Date)
	assert.Equal(t, 3, page1.TotalItems)
	assert.Equal(t, 1, page1.CurrentPage)
	assert.Equal(t, 2, page1.TotalPages)

	page2 := Run(marchLedger(), Filter{}, 2, 2)

	require.Len(t, page2.Items, 1)
	assert.Equal(t, date("2024-03-05"), page2.Items[0].Date)
	assert.Equal(t, 3, page2.TotalItems)
	assert.Equal(t, 2, page2.CurrentPage)
	assert.Equal(t, 2, page2.TotalPages)
}

func TestRun_PageUnionReconstructsFilteredSet(t *testing.T) {
	ledger := make([]core.Expense, 0, 25)
	base := date("2024-01-01")
	for i := 0; i < 25; i++ {
		ledger = append(ledger, core.Expense{
			ID:         int64(i + 1),
			Date:       base.AddDate(0, 0, i),
			CategoryID: 1,
			CreatedAt:  base.AddDate(0, 0, i),
		})
	}

	ordered := Apply(ledger, Filter{})

	const pageSize = 7
	var union []core.Expense
	page := 1
	for {
		p := Run(ledger, Filter{}, page, pageSize)
		assert.Equal(t, len(ordered), p.TotalItems)
		union = append(union, p.Items...)
		if page >= p.TotalPages {
			break
		}
		page++
	}

	assert.Equal(t, ordered, union)
}

func TestPaginate_Clamps(t *testing.T) {
	items := Apply(marchLedger(), Filter{})

	p := Paginate(items, 0, 2)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Len(t, p.Items, 2)

	p = Paginate(items, -5, 2)
	assert.Equal(t, 1, p.CurrentPage)

	p = Paginate(items, 1, 0)
	require.Len(t, p.Items, 3)
	assert.Equal(t, 1, p.TotalPages)

	p = Paginate(items, 1, -1)
	assert.Len(t, p.Items, 3)
}

func TestPaginate_PagePastEnd(t *testing.T) {
	p := Paginate(Apply(marchLedger(), Filter{}), 9, 2)

	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.TotalItems)
	assert.Equal(t, 9, p.CurrentPage)
	assert.Equal(t, 2, p.TotalPages)
}

func TestPaginate_EmptySet(t *testing.T) {
	p := Paginate(nil, 1, 20)

	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalItems)
	assert.Equal(t, 0, p.TotalPages)
}

func TestRun_FilterThenPaginate(t *testing.T) {
	ledger := append(marchLedger(),
		core.Expense{ID: 4, Description: "Mercado de novo", Date: date("2024-03-20"), CategoryID: 2, CreatedAt: date("2024-03-20")},
	)

	p := Run(ledger, Filter{Search: "mercado"}, 1, 20)

	require.Len(t, p.Items, 2)
	assert.Equal(t, int64(4), p.Items[0].ID)
	assert.Equal(t, int64(1), p.Items[1].ID)
	assert.Equal(t, 2, p.TotalItems)
	assert.Equal(t, 1, p.TotalPages)
}
