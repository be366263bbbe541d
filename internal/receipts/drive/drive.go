// Package drive stores receipt files in a Google Drive folder. Locators are
// "drive://<fileID>". Credentials follow the same service-account
// conventions as the rest of the deployment.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	gdrive "google.golang.org/api/drive/v3"

	"despesas/internal/receipts"
)

const locatorScheme = "drive://"

// Store uploads receipt files into a single Drive folder.
type Store struct {
	svc      *gdrive.Service
	folderID string
}

var _ receipts.Store = (*Store)(nil)

// Options carries the settings NewStore needs. The caller resolves them
// from its configuration; exactly one of CredentialsJSON or
// CredentialsFile must be set.
type Options struct {
	FolderID        string
	CredentialsJSON string
	CredentialsFile string
}

// NewStore creates a Drive-backed store for the given folder.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	folderID := strings.TrimSpace(opts.FolderID)
	if folderID == "" {
		return nil, errors.New("missing drive folder id")
	}

	credentials, err := opts.credentials()
	if err != nil {
		return nil, err
	}

	svc, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gdrive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}

	return &Store{svc: svc, folderID: folderID}, nil
}

func (o Options) credentials() ([]byte, error) {
	if inline := strings.TrimSpace(o.CredentialsJSON); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(o.CredentialsFile)
	if file == "" {
		return nil, errors.New("missing Google service account credentials")
	}
	credentials, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentials, nil
}

// Save uploads the content as a new file in the configured folder.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	file := &gdrive.File{
		Name:    name,
		Parents: []string{s.folderID},
	}
	created, err := s.svc.Files.Create(file).Media(content).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload receipt to drive: %w", err)
	}

	locator := locatorScheme + created.Id
	slog.InfoContext(ctx, "Receipt uploaded to Drive", "file_id", created.Id, "name", name)
	return locator, nil
}

// Delete removes the Drive file behind the locator. An already-deleted file
// is not an error.
func (s *Store) Delete(ctx context.Context, locator string) error {
	id, ok := strings.CutPrefix(locator, locatorScheme)
	if !ok || id == "" {
		return fmt.Errorf("locator %q is not a drive locator", locator)
	}

	err := s.svc.Files.Delete(id).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete drive file %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Receipt removed from Drive", "file_id", id)
	return nil
}
