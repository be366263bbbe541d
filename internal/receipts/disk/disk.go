// Package disk stores receipt files on the local filesystem. Locators are
// URL paths under the configured base path, served statically by the HTTP
// server.
package disk

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	applog "despesas/internal/log"
	"despesas/internal/receipts"
)

// Store writes receipt files under Dir and hands out locators rooted at
// BasePath (e.g. "/uploads/ab12cd34_recibo.pdf").
type Store struct {
	dir      string
	basePath string
}

var _ receipts.Store = (*Store)(nil)

// NewStore ensures the directory exists and returns a disk-backed store.
func NewStore(dir, basePath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &Store{dir: dir, basePath: strings.TrimSuffix(basePath, "/")}, nil
}

// Dir returns the directory files are written to, for static serving.
func (s *Store) Dir() string { return s.dir }

// Save writes the content under a random-prefixed variant of name so two
// uploads with the same display name never collide.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	unique := uniquePrefix() + "_" + sanitizeName(name)
	dst := filepath.Join(s.dir, unique)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	locator := s.basePath + "/" + unique
	slog.InfoContext(ctx, "Receipt file stored", applog.FieldLocator, locator)
	return locator, nil
}

// Delete removes the file behind the locator. A locator outside the base
// path is rejected; a missing file is not an error.
func (s *Store) Delete(ctx context.Context, locator string) error {
	rel, ok := strings.CutPrefix(locator, s.basePath+"/")
	if !ok || rel == "" || strings.Contains(rel, "/") {
		return fmt.Errorf("locator %q outside receipt store", locator)
	}
	err := os.Remove(filepath.Join(s.dir, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove receipt file: %w", err)
	}
	slog.InfoContext(ctx, "Receipt file removed", applog.FieldLocator, locator)
	return nil
}

func uniquePrefix() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "receipt"
	}
	return hex.EncodeToString(b)
}

// sanitizeName keeps only the final path element and replaces separators so
// a hostile display name cannot escape the store directory.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "receipt"
	}
	return name
}
