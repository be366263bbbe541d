package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelDebug,
		Component: component,
		Handler:   slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return logger, &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("garbage"))
}

func TestLogger_EmitsComponentField(t *testing.T) {
	logger, buf := newJSONLogger(ComponentWorker)

	logger.Info("receipt cleanup completed", FieldExpenseID, int64(7), FieldLocator, "/uploads/a.pdf")

	record := decodeRecord(t, buf)
	assert.Equal(t, ComponentWorker, record[FieldComponent])
	assert.Equal(t, float64(7), record[FieldExpenseID])
	assert.Equal(t, "/uploads/a.pdf", record[FieldLocator])
}

func TestLogger_WithComponentOverrides(t *testing.T) {
	logger, buf := newJSONLogger(ComponentApp)

	logger.WithComponent(ComponentWorker).Info("started")

	record := decodeRecord(t, buf)
	assert.Equal(t, ComponentWorker, record[FieldComponent])
}

func TestFieldKeys(t *testing.T) {
	// The wire keys are part of the log contract; dashboards filter on them.
	assert.Equal(t, "expense_id", FieldExpenseID)
	assert.Equal(t, "category_id", FieldCategoryID)
	assert.Equal(t, "locator", FieldLocator)
	assert.Equal(t, "reason", FieldReason)
	assert.Equal(t, "client_ip", FieldClientIP)
	assert.Equal(t, "request_id", FieldRequestID)
}
