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

// ListCards returns every card, active and inactive alike, ordered by name.
func (r *Repository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, limit_cents, active, created_at
		FROM cards
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	slog.DebugContext(ctx, "Listed cards", "count", len(cards))
	return cards, nil
}

// GetCard returns a card by id or core.ErrNotFound.
func (r *Repository) GetCard(ctx context.Context, id int64) (*core.Card, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, limit_cents, active, created_at
		FROM cards
		WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query card %d: %w", id, err)
	}
	return c, nil
}

// CreateCard inserts a new card and returns it with its identity.
func (r *Repository) CreateCard(ctx context.Context, c core.Card) (*core.Card, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (name, limit_cents, active, created_at)
		VALUES (?, ?, 1, ?)`,
		c.Name, limitCents(c.Limit), now)
	if err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("card insert id: %w", err)
	}

	c.ID = id
	c.Active = true
	c.CreatedAt = now
	slog.InfoContext(ctx, "Card created", "id", id, "name", c.Name)
	return &c, nil
}

// UpdateCard persists name, limit and the active flag.
func (r *Repository) UpdateCard(ctx context.Context, c core.Card) (*core.Card, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET name = ?, limit_cents = ?, active = ?
		WHERE id = ?`,
		c.Name, limitCents(c.Limit), c.Active, c.ID)
	if err != nil {
		return nil, fmt.Errorf("update card %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetCard(ctx, c.ID)
}

// DeactivateCard soft-deletes a card; the row is never removed while
// expenses may reference it.
func (r *Repository) DeactivateCard(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate card %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Card deactivated", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*core.Card, error) {
	var c core.Card
	var limit sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &limit, &c.Active, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan card: %w", err)
	}
	if limit.Valid {
		c.Limit = &core.Money{Cents: limit.Int64}
	}
	return &c, nil
}

func limitCents(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}
