package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCategory(t *testing.T, repo *Repository, name string) *core.Category {
	t.Helper()
	cat, err := repo.CreateCategory(context.Background(), core.Category{
		Name:  name,
		Color: core.DefaultCategoryColor,
		Icon:  core.DefaultCategoryIcon,
	})
	require.NoError(t, err)
	return cat
}

func seedCard(t *testing.T, repo *Repository, name string) *core.Card {
	t.Helper()
	limit := core.Money{Cents: 500000}
	card, err := repo.CreateCard(context.Background(), core.Card{Name: name, Limit: &limit})
	require.NoError(t, err)
	return card
}

func TestRepository_Ping(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestExpense_CreateAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")
	card := seedCard(t, repo, "Nubank")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 4550},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Note:        "compra da semana",
		CategoryID:  cat.ID,
		CardID:      &card.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetExpense(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Mercado", got.Description)
	assert.Equal(t, int64(4550), got.Amount.Cents)
	assert.True(t, got.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "compra da semana", got.Note)
	assert.Nil(t, got.Receipt)
	assert.Nil(t, got.UpdatedAt)
	assert.False(t, got.CreatedAt.IsZero())

	assert.Equal(t, cat.ID, got.CategoryID)
	assert.Equal(t, "Alimentação", got.CategoryName)
	assert.Equal(t, core.DefaultCategoryColor, got.CategoryColor)
	require.NotNil(t, got.CardID)
	assert.Equal(t, card.ID, *got.CardID)
	require.NotNil(t, got.CardName)
	assert.Equal(t, "Nubank", *got.CardName)
}

func TestExpense_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetExpense(context.Background(), 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpense_WithoutCardOrNote(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Transporte")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Ônibus",
		Amount:      core.Money{Cents: 440},
		Date:        time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	assert.Nil(t, created.CardID)
	assert.Nil(t, created.CardName)
	assert.Empty(t, created.Note)
}

func TestExpense_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")
	other := seedCategory(t, repo, "Lazer")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateExpense(ctx, core.Expense{
		ID:          created.ID,
		Description: "Cinema",
		Amount:      core.Money{Cents: 3500},
		Date:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  other.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cinema", updated.Description)
	assert.Equal(t, int64(3500), updated.Amount.Cents)
	assert.Equal(t, "Lazer", updated.CategoryName)
	require.NotNil(t, updated.UpdatedAt)
}

func TestExpense_UpdateMissing(t *testing.T) {
	repo := newTestRepo(t)
	cat := seedCategory(t, repo, "Alimentação")

	_, err := repo.UpdateExpense(context.Background(), core.Expense{
		ID:          999,
		Description: "x",
		Amount:      core.Money{Cents: 1},
		Date:        time.Now().UTC(),
		CategoryID:  cat.ID,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpense_UpdateLeavesReceiptUntouched(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetReceipt(ctx, created.ID, core.Receipt{
		Name: "nota.pdf",
		URL:  "/uploads/abc_nota.pdf",
	}))

	updated, err := repo.UpdateExpense(ctx, core.Expense{
		ID:          created.ID,
		Description: "Mercado grande",
		Amount:      core.Money{Cents: 2000},
		Date:        created.Date,
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Receipt)
	assert.Equal(t, "nota.pdf", updated.Receipt.Name)
	assert.Equal(t, "/uploads/abc_nota.pdf", updated.Receipt.URL)
}

func TestExpense_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteExpense(ctx, created.ID))

	_, err = repo.GetExpense(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteExpense(ctx, created.ID), core.ErrNotFound)
}

func TestExpense_SetAndClearReceipt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetReceipt(ctx, created.ID, core.Receipt{
		Name: "nota.jpg",
		URL:  "/uploads/x_nota.jpg",
	}))

	got, err := repo.GetExpense(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Receipt)
	assert.Equal(t, "nota.jpg", got.Receipt.Name)
	require.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.ClearReceipt(ctx, created.ID))

	got, err = repo.GetExpense(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Receipt)

	// Receipt writes against a missing expense surface as not-found.
	assert.ErrorIs(t, repo.SetReceipt(ctx, 999, core.Receipt{Name: "a", URL: "b"}), core.ErrNotFound)
	assert.ErrorIs(t, repo.ClearReceipt(ctx, 999), core.ErrNotFound)
}

func TestExpense_ListBetweenHalfOpenWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	for _, day := range []string{"2024-02-29", "2024-03-01", "2024-03-31", "2024-04-01"} {
		d, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		_, err = repo.CreateExpense(ctx, core.Expense{
			Description: day,
			Amount:      core.Money{Cents: 100},
			Date:        d.UTC(),
			CategoryID:  cat.ID,
		})
		require.NoError(t, err)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	got, err := repo.ListExpensesBetween(ctx, from, to)
	require.NoError(t, err)

	require.Len(t, got, 2)
	names := []string{got[0].Description, got[1].Description}
	assert.ElementsMatch(t, []string{"2024-03-01", "2024-03-31"}, names)
}

func TestCategory_NameExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	exists, err := repo.CategoryNameExists(ctx, "Alimentação", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The row itself is excluded when checking for a rename collision.
	exists, err = repo.CategoryNameExists(ctx, "Alimentação", cat.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.CategoryNameExists(ctx, "Transporte", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategory_SoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	require.NoError(t, repo.DeactivateCategory(ctx, cat.ID))

	got, err := repo.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, repo.DeactivateCategory(ctx, 999), core.ErrNotFound)
}

func TestCategory_SoftDeleteKeepsExpenseReference(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	created, err := repo.CreateExpense(ctx, core.Expense{
		Description: "Mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeactivateCategory(ctx, cat.ID))

	got, err := repo.GetExpense(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alimentação", got.CategoryName)
}

func TestCategory_UpdateCanReactivate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Alimentação")

	require.NoError(t, repo.DeactivateCategory(ctx, cat.ID))

	cat.Active = true
	cat.Name = "Alimentação e bebidas"
	updated, err := repo.UpdateCategory(ctx, *cat)
	require.NoError(t, err)

	assert.True(t, updated.Active)
	assert.Equal(t, "Alimentação e bebidas", updated.Name)
}

func TestCategory_ListOrderedByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedCategory(t, repo, "Transporte")
	seedCategory(t, repo, "Alimentação")
	lazer := seedCategory(t, repo, "Lazer")
	require.NoError(t, repo.DeactivateCategory(ctx, lazer.ID))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)

	require.Len(t, cats, 3)
	assert.Equal(t, "Alimentação", cats[0].Name)
	assert.Equal(t, "Lazer", cats[1].Name)
	assert.Equal(t, "Transporte", cats[2].Name)
	assert.False(t, cats[1].Active)
}

func TestCard_CRUDAndSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	limit := core.Money{Cents: 250000}
	card, err := repo.CreateCard(ctx, core.Card{Name: "Visa", Limit: &limit})
	require.NoError(t, err)
	assert.True(t, card.Active)

	got, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Limit)
	assert.Equal(t, int64(250000), got.Limit.Cents)

	got.Limit = nil
	got.Name = "Visa Gold"
	updated, err := repo.UpdateCard(ctx, *got)
	require.NoError(t, err)
	assert.Nil(t, updated.Limit)
	assert.Equal(t, "Visa Gold", updated.Name)

	require.NoError(t, repo.DeactivateCard(ctx, card.ID))
	got, err = repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, repo.DeactivateCard(ctx, 999), core.ErrNotFound)
	_, err = repo.GetCard(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
