package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptCleanupMessage asks the worker to delete an orphaned receipt file.
// It carries the locator, not the bytes; the worker talks to the file store.
type ReceiptCleanupMessage struct {
	ExpenseID int64     `json:"expense_id"`
	Locator   string    `json:"locator"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Reasons a receipt file becomes orphaned.
const (
	ReasonDetached       = "detached"
	ReasonExpenseDeleted = "expense_deleted"
	ReasonExpenseMissing = "expense_missing"
	ReasonReplaced       = "replaced"
)

// NewReceiptCleanupMessage builds a cleanup message for a stored file.
func NewReceiptCleanupMessage(expenseID int64, locator, reason string) *ReceiptCleanupMessage {
	return &ReceiptCleanupMessage{
		ExpenseID: expenseID,
		Locator:   locator,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReceiptCleanupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptCleanupMessageFromJSON parses a message from JSON bytes.
func ReceiptCleanupMessageFromJSON(data []byte) (*ReceiptCleanupMessage, error) {
	var msg ReceiptCleanupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
