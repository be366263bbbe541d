package services

import (
	"context"
	"fmt"
	"strings"

	"despesas/internal/core"
	"despesas/internal/storage"
)

// CategoryService manages the category lifecycle. Categories are never hard
// deleted; deactivation hides them from new expenses while past expenses keep
// resolving.
type CategoryService struct {
	store *storage.Repository
}

func NewCategoryService(store *storage.Repository) *CategoryService {
	return &CategoryService{store: store}
}

// CreateCategoryParams carries the optional presentation fields. Nil color
// or icon falls back to the defaults.
type CreateCategoryParams struct {
	Name  string
	Color *string
	Icon  *string
}

// UpdateCategoryParams mirrors the create shape plus the active flag. Nil
// color or icon keeps the current value.
type UpdateCategoryParams struct {
	Name   string
	Color  *string
	Icon   *string
	Active bool
}

// List returns every category, active and inactive alike. The caller decides
// what to show.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// Get returns one category by identity regardless of its active flag.
func (s *CategoryService) Get(ctx context.Context, id int64) (*core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// Create inserts an active category. The name must be unique across the
// whole table, inactive rows included.
func (s *CategoryService) Create(ctx context.Context, p CreateCategoryParams) (*core.Category, error) {
	c := core.Category{
		Name:   strings.TrimSpace(p.Name),
		Color:  core.DefaultCategoryColor,
		Icon:   core.DefaultCategoryIcon,
		Active: true,
	}
	if p.Color != nil && *p.Color != "" {
		c.Color = *p.Color
	}
	if p.Icon != nil && *p.Icon != "" {
		c.Icon = *p.Icon
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkNameUnique(ctx, c.Name, 0); err != nil {
		return nil, err
	}
	return s.store.CreateCategory(ctx, c)
}

// Update rewrites the category. Name uniqueness excludes the row itself so a
// rename to the same name is a no-op.
func (s *CategoryService) Update(ctx context.Context, id int64, p UpdateCategoryParams) (*core.Category, error) {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	c := *existing
	c.Name = strings.TrimSpace(p.Name)
	c.Active = p.Active
	if p.Color != nil && *p.Color != "" {
		c.Color = *p.Color
	}
	if p.Icon != nil && *p.Icon != "" {
		c.Icon = *p.Icon
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkNameUnique(ctx, c.Name, id); err != nil {
		return nil, err
	}
	return s.store.UpdateCategory(ctx, c)
}

// Deactivate soft-deletes the category. Expenses referencing it are left
// untouched.
func (s *CategoryService) Deactivate(ctx context.Context, id int64) error {
	return s.store.DeactivateCategory(ctx, id)
}

func (s *CategoryService) checkNameUnique(ctx context.Context, name string, excludeID int64) error {
	exists, err := s.store.CategoryNameExists(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return core.NewValidationError("nome", "já existe uma categoria com este nome")
	}
	return nil
}
