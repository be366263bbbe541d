package services

import (
	"context"
	"strings"

	"despesas/internal/core"
	"despesas/internal/storage"
)

// CardService manages the card lifecycle. Cards follow the same soft-delete
// rules as categories but carry no uniqueness constraint on the name.
type CardService struct {
	store *storage.Repository
}

func NewCardService(store *storage.Repository) *CardService {
	return &CardService{store: store}
}

// CreateCardParams carries the card fields. A nil limit means no spending
// limit is tracked.
type CreateCardParams struct {
	Name  string
	Limit *core.Money
}

// UpdateCardParams mirrors the create shape plus the active flag.
type UpdateCardParams struct {
	Name   string
	Limit  *core.Money
	Active bool
}

func (s *CardService) List(ctx context.Context) ([]core.Card, error) {
	return s.store.ListCards(ctx)
}

func (s *CardService) Get(ctx context.Context, id int64) (*core.Card, error) {
	return s.store.GetCard(ctx, id)
}

func (s *CardService) Create(ctx context.Context, p CreateCardParams) (*core.Card, error) {
	c := core.Card{
		Name:   strings.TrimSpace(p.Name),
		Limit:  p.Limit,
		Active: true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateCard(ctx, c)
}

func (s *CardService) Update(ctx context.Context, id int64, p UpdateCardParams) (*core.Card, error) {
	existing, err := s.store.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	c := *existing
	c.Name = strings.TrimSpace(p.Name)
	c.Limit = p.Limit
	c.Active = p.Active
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateCard(ctx, c)
}

// Deactivate soft-deletes the card. Expenses referencing it keep resolving.
func (s *CardService) Deactivate(ctx context.Context, id int64) error {
	return s.store.DeactivateCard(ctx, id)
}
