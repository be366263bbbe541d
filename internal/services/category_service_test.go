package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/core"
)

func strPtr(s string) *string { return &s }

func TestCategory_CreateDefaults(t *testing.T) {
	fx := newFixture(t)

	cat, err := fx.categories.Create(context.Background(), CreateCategoryParams{Name: "  Transporte  "})
	require.NoError(t, err)

	assert.Equal(t, "Transporte", cat.Name)
	assert.Equal(t, core.DefaultCategoryColor, cat.Color)
	assert.Equal(t, core.DefaultCategoryIcon, cat.Icon)
	assert.True(t, cat.Active)
}

func TestCategory_CreateWithPresentation(t *testing.T) {
	fx := newFixture(t)

	cat, err := fx.categories.Create(context.Background(), CreateCategoryParams{
		Name:  "Lazer",
		Color: strPtr("#ff0000"),
		Icon:  strPtr("film"),
	})
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", cat.Color)
	assert.Equal(t, "film", cat.Icon)
}

func TestCategory_CreateEmptyColorFallsBack(t *testing.T) {
	fx := newFixture(t)

	cat, err := fx.categories.Create(context.Background(), CreateCategoryParams{
		Name:  "Saúde",
		Color: strPtr(""),
	})
	require.NoError(t, err)

	assert.Equal(t, core.DefaultCategoryColor, cat.Color)
}

func TestCategory_CreateDuplicateName(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.categories.Create(context.Background(), CreateCategoryParams{Name: "Alimentação"})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "nome", ve.Field)
}

func TestCategory_DuplicateCheckIncludesInactiveRows(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.categories.Deactivate(ctx, fx.categoryID))

	_, err := fx.categories.Create(ctx, CreateCategoryParams{Name: "Alimentação"})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCategory_UpdateKeepsPresentationWhenOmitted(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	cat, err := fx.categories.Create(ctx, CreateCategoryParams{
		Name:  "Lazer",
		Color: strPtr("#ff0000"),
		Icon:  strPtr("film"),
	})
	require.NoError(t, err)

	updated, err := fx.categories.Update(ctx, cat.ID, UpdateCategoryParams{
		Name:   "Lazer e cultura",
		Active: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Lazer e cultura", updated.Name)
	assert.Equal(t, "#ff0000", updated.Color)
	assert.Equal(t, "film", updated.Icon)
}

func TestCategory_UpdateRenameToOwnNameAllowed(t *testing.T) {
	fx := newFixture(t)

	updated, err := fx.categories.Update(context.Background(), fx.categoryID, UpdateCategoryParams{
		Name:   "Alimentação",
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alimentação", updated.Name)
}

func TestCategory_UpdateRenameToTakenName(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	other, err := fx.categories.Create(ctx, CreateCategoryParams{Name: "Lazer"})
	require.NoError(t, err)

	_, err = fx.categories.Update(ctx, other.ID, UpdateCategoryParams{
		Name:   "Alimentação",
		Active: true,
	})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "nome", ve.Field)
}

func TestCategory_UpdateCanReactivate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.categories.Deactivate(ctx, fx.categoryID))

	updated, err := fx.categories.Update(ctx, fx.categoryID, UpdateCategoryParams{
		Name:   "Alimentação",
		Active: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Active)
}

func TestCategory_UpdateMissing(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.categories.Update(context.Background(), 999, UpdateCategoryParams{Name: "x", Active: true})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCard_CreateAndUpdate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	limit := core.Money{Cents: 300000}
	card, err := fx.cards.Create(ctx, CreateCardParams{Name: " Visa ", Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Visa", card.Name)
	assert.True(t, card.Active)

	updated, err := fx.cards.Update(ctx, card.ID, UpdateCardParams{
		Name:   "Visa Gold",
		Limit:  nil,
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Visa Gold", updated.Name)
	assert.Nil(t, updated.Limit)
}

func TestCard_DuplicateNameAllowed(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.cards.Create(context.Background(), CreateCardParams{Name: "Nubank"})
	assert.NoError(t, err)
}

func TestCard_CreateRejectsNegativeLimit(t *testing.T) {
	fx := newFixture(t)

	negative := core.Money{Cents: -1}
	_, err := fx.cards.Create(context.Background(), CreateCardParams{Name: "Visa", Limit: &negative})

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "limite", ve.Field)
}

func TestCard_Deactivate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.cards.Deactivate(ctx, fx.cardID))

	got, err := fx.cards.Get(ctx, fx.cardID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}
