package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/sentiserve/internal/logging"
)

func TestNewHandler_Dev(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, slog.LevelDebug, true))

	logger.Debug("[Test] Debug line", slog.String("component", "ml"))

	out := buf.String()
	assert.Contains(t, out, "[Test] Debug line")
	assert.Contains(t, out, "logger_test.go")
}

func TestNewHandler_Production(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, slog.LevelInfo, false))

	logger.Debug("[Test] Hidden")
	logger.Info("[Test] Shown", slog.Int("count", 3))

	out := buf.String()
	assert.NotContains(t, out, "Hidden")
	assert.Contains(t, out, "[Test] Shown")
	assert.Contains(t, out, "count=3")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "logger_test.go")
}
