// Package worker runs the receipt cleanup consumer: it deletes stored
// receipt files whose expense record no longer references them.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/amqp"
	applog "despesas/internal/log"
	"despesas/internal/receipts"
)

// ReceiptWorker handles receipt cleanup messages from AMQP.
type ReceiptWorker struct {
	store receipts.Store
}

// NewReceiptWorker builds a worker deleting files through the given store.
func NewReceiptWorker(store receipts.Store) *ReceiptWorker {
	return &ReceiptWorker{store: store}
}

// HandleCleanupMessage deletes the file behind the message's locator.
// Returning an error requeues the message for another attempt.
func (w *ReceiptWorker) HandleCleanupMessage(ctx context.Context, msg *amqp.ReceiptCleanupMessage) error {
	slog.InfoContext(ctx, "Processing receipt cleanup",
		applog.FieldExpenseID, msg.ExpenseID,
		applog.FieldLocator, msg.Locator,
		applog.FieldReason, msg.Reason)

	if err := w.store.Delete(ctx, msg.Locator); err != nil {
		return fmt.Errorf("delete receipt file: %w", err)
	}

	slog.InfoContext(ctx, "Receipt cleanup completed",
		applog.FieldExpenseID, msg.ExpenseID,
		applog.FieldLocator, msg.Locator)
	return nil
}
