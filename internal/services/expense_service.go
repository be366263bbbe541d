// Package services orchestrates the ledger operations: validation,
// reference resolution, store writes and the receipt attachment lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"despesas/internal/amqp"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/query"
	"despesas/internal/receipts"
	"despesas/internal/storage"
)

// ExpenseService implements expense CRUD and the attachment lifecycle.
// The receipt store and AMQP client are optional; when the broker is absent
// orphaned files are deleted inline, best effort.
type ExpenseService struct {
	store      *storage.Repository
	files      receipts.Store
	amqpClient *amqp.Client
}

// NewExpenseService wires the expense service. files and amqpClient may be
// nil.
func NewExpenseService(store *storage.Repository, files receipts.Store, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{store: store, files: files, amqpClient: amqpClient}
}

// List produces the filtered, ordered, paginated expense view.
func (s *ExpenseService) List(ctx context.Context, f query.Filter, page, pageSize int) (query.Page, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return query.Page{}, fmt.Errorf("list expenses: %w", err)
	}
	return query.Run(expenses, f, page, pageSize), nil
}

// Get returns one expense by identity.
func (s *ExpenseService) Get(ctx context.Context, id int64) (*core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// Create validates the fields, resolves the category and optional card
// references, and persists the expense.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, e); err != nil {
		return nil, err
	}
	return s.store.CreateExpense(ctx, e)
}

// Update replaces the writable fields of an existing expense. The receipt
// pair is not touched here; it has its own attach/detach path.
func (s *ExpenseService) Update(ctx context.Context, id int64, e core.Expense) (*core.Expense, error) {
	e.ID = id
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, e); err != nil {
		return nil, err
	}
	return s.store.UpdateExpense(ctx, e)
}

// Delete hard-deletes an expense and releases its receipt file, if any.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if existing.HasReceipt() {
		s.CleanupReceipt(ctx, id, existing.Receipt.URL, amqp.ReasonExpenseDeleted)
	}
	return nil
}

// AttachReceipt stores the receipt pair on the expense, always both fields
// together. A previously attached file is released. Returns
// core.ErrNotFound when the expense does not exist; the caller owns the
// now-orphaned stored file in that case.
func (s *ExpenseService) AttachReceipt(ctx context.Context, id int64, rc core.Receipt) (*core.Expense, error) {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetReceipt(ctx, id, rc); err != nil {
		return nil, err
	}

	if existing.HasReceipt() && existing.Receipt.URL != rc.URL {
		s.CleanupReceipt(ctx, id, existing.Receipt.URL, amqp.ReasonReplaced)
	}

	return s.store.GetExpense(ctx, id)
}

// DetachReceipt clears both receipt fields and releases the stored file.
// Detaching an expense that has no receipt still succeeds.
func (s *ExpenseService) DetachReceipt(ctx context.Context, id int64) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.ClearReceipt(ctx, id); err != nil {
		return err
	}

	if existing.HasReceipt() {
		s.CleanupReceipt(ctx, id, existing.Receipt.URL, amqp.ReasonDetached)
	}
	return nil
}

// CleanupReceipt releases a stored receipt file that no expense references
// anymore. The record mutation that orphaned the file already succeeded, so
// failures here are logged, handed to the queue when possible, and never
// surfaced to the caller.
func (s *ExpenseService) CleanupReceipt(ctx context.Context, expenseID int64, locator, reason string) {
	if s.amqpClient != nil {
		msg := amqp.NewReceiptCleanupMessage(expenseID, locator, reason)
		if err := s.amqpClient.PublishReceiptCleanup(ctx, msg); err == nil {
			return
		} else {
			slog.ErrorContext(ctx, "Failed to publish receipt cleanup, deleting inline",
				applog.FieldExpenseID, expenseID, applog.FieldLocator, locator, applog.FieldError, err)
		}
	}

	if s.files == nil {
		slog.WarnContext(ctx, "No receipt store configured, orphaned file left behind",
			applog.FieldExpenseID, expenseID, applog.FieldLocator, locator)
		return
	}

	if err := s.files.Delete(ctx, locator); err != nil {
		storageErr := &core.StorageError{Op: "delete", Err: err}
		slog.ErrorContext(ctx, "Orphaned receipt file not removed",
			applog.FieldExpenseID, expenseID, applog.FieldLocator, locator, applog.FieldError, storageErr)
	}
}

// resolveReferences checks that the category exists and, when a card is
// given, that it exists too. Inactive entities still resolve; soft delete
// never invalidates history.
func (s *ExpenseService) resolveReferences(ctx context.Context, e core.Expense) error {
	if _, err := s.store.GetCategory(ctx, e.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &core.ReferentialError{Entity: "categoria", ID: e.CategoryID}
		}
		return fmt.Errorf("resolve category: %w", err)
	}
	if e.CardID != nil {
		if _, err := s.store.GetCard(ctx, *e.CardID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return &core.ReferentialError{Entity: "cartao", ID: *e.CardID}
			}
			return fmt.Errorf("resolve card: %w", err)
		}
	}
	return nil
}
