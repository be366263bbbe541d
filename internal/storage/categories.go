package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"despesas/internal/core"
)

// ListCategories returns every category, active and inactive alike, ordered
// by name. Callers filter for active-only when they need to.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, icon, active, created_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	slog.DebugContext(ctx, "Listed categories", "count", len(cats))
	return cats, nil
}

// GetCategory returns a category by id or core.ErrNotFound.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, icon, active, created_at
		FROM categories
		WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category %d: %w", id, err)
	}
	return &c, nil
}

// CategoryNameExists reports whether any category row (active or not)
// already carries the name, excluding the given id.
func (r *Repository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM categories WHERE name = ? AND id != ?`,
		name, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

// CreateCategory inserts a new category and returns it with its identity.
func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, color, icon, active, created_at)
		VALUES (?, ?, ?, 1, ?)`,
		c.Name, c.Color, c.Icon, now)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category insert id: %w", err)
	}

	c.ID = id
	c.Active = true
	c.CreatedAt = now
	slog.InfoContext(ctx, "Category created", "id", id, "name", c.Name)
	return &c, nil
}

// UpdateCategory persists name, color, icon and the active flag. The active
// flag is the only write path that can reactivate a soft-deleted category.
func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ?, active = ?
		WHERE id = ?`,
		c.Name, c.Color, c.Icon, c.Active, c.ID)
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetCategory(ctx, c.ID)
}

// DeactivateCategory soft-deletes a category: the row stays so historical
// expenses keep a valid reference. Existing references never make this fail.
func (r *Repository) DeactivateCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Category deactivated", "id", id)
	return nil
}
