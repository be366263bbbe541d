package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"
)

// expenseColumns joins expenses with their category (required) and card
// (optional) so every record carries its display fields.
const expenseColumns = `
	e.id, e.description, e.amount_cents, e.date, e.note,
	e.receipt_name, e.receipt_url,
	e.category_id, e.card_id, e.created_at, e.updated_at,
	c.name, c.color, cd.name
FROM expenses e
JOIN categories c ON c.id = e.category_id
LEFT JOIN cards cd ON cd.id = e.card_id`

// ListExpenses returns every expense with joined display fields. Ordering
// and pagination are the query engine's job.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(ctx, rows)
}

// ListExpensesBetween returns expenses with from <= date < to.
func (r *Repository) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` WHERE e.date >= ? AND e.date < ?`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query expenses between: %w", err)
	}
	defer rows.Close()
	return collectExpenses(ctx, rows)
}

// GetExpense returns an expense by id or core.ErrNotFound.
func (r *Repository) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` WHERE e.id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query expense %d: %w", id, err)
	}
	return e, nil
}

// CreateExpense inserts a new expense and returns it with joined fields.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (description, amount_cents, date, note, category_id, card_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Description, e.Amount.Cents, e.Date.UTC(), nullStr(e.Note), e.CategoryID, nullID(e.CardID), now)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		applog.FieldCategoryID, e.CategoryID)
	return r.GetExpense(ctx, id)
}

// UpdateExpense persists the writable fields and bumps updated_at. The
// receipt pair is untouched; it has its own write path.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET description = ?, amount_cents = ?, date = ?, note = ?,
		    category_id = ?, card_id = ?, updated_at = ?
		WHERE id = ?`,
		e.Description, e.Amount.Cents, e.Date.UTC(), nullStr(e.Note),
		e.CategoryID, nullID(e.CardID), time.Now().UTC(), e.ID)
	if err != nil {
		return nil, fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetExpense(ctx, e.ID)
}

// DeleteExpense hard-deletes an expense. The only entity with a hard-delete
// path.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// SetReceipt writes the receipt pair in a single UPDATE so name and locator
// are never persisted one without the other.
func (r *Repository) SetReceipt(ctx context.Context, id int64, rc core.Receipt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET receipt_name = ?, receipt_url = ?, updated_at = ?
		WHERE id = ?`,
		rc.Name, rc.URL, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set receipt on expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ClearReceipt clears both receipt fields in a single UPDATE.
func (r *Repository) ClearReceipt(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET receipt_name = NULL, receipt_url = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("clear receipt on expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func collectExpenses(ctx context.Context, rows *sql.Rows) ([]core.Expense, error) {
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	slog.DebugContext(ctx, "Listed expenses", "count", len(out))
	return out, nil
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		e           core.Expense
		note        sql.NullString
		receiptName sql.NullString
		receiptURL  sql.NullString
		cardID      sql.NullInt64
		updatedAt   sql.NullTime
		cardName    sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.Description, &e.Amount.Cents, &e.Date, &note,
		&receiptName, &receiptURL,
		&e.CategoryID, &cardID, &e.CreatedAt, &updatedAt,
		&e.CategoryName, &e.CategoryColor, &cardName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	e.Note = note.String
	if receiptName.Valid && receiptURL.Valid {
		e.Receipt = &core.Receipt{Name: receiptName.String, URL: receiptURL.String}
	}
	if cardID.Valid {
		e.CardID = &cardID.Int64
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	if cardName.Valid {
		s := cardName.String
		e.CardName = &s
	}
	return &e, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
