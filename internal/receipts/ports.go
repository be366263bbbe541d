// Package receipts defines the port to the external receipt file store.
// The ledger only keeps a display name and a locator; the bytes live behind
// one of the Store implementations (local disk or Google Drive).
package receipts

import (
	"context"
	"io"
)

// Store is the file-storage collaborator for receipt attachments.
type Store interface {
	// Save stores the file content under a unique variant of name and
	// returns the locator the expense record should keep.
	Save(ctx context.Context, name string, content io.Reader) (locator string, err error)

	// Delete removes the stored file behind the locator. Deleting an
	// already-absent file is not an error.
	Delete(ctx context.Context, locator string) error
}
