package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, GenerateRunID())
}

func TestSetup_AttachesRunID(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	Setup(&buf, "info", "test-run-id")

	slog.Info("hello")
	out := buf.String()
	assert.Contains(t, out, "run_id=test-run-id")
	assert.Contains(t, out, "msg=hello")
}

func TestSetup_LevelFiltering(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	Setup(&buf, "warn", "rid")

	slog.Info("quiet")
	assert.Empty(t, buf.String())

	slog.Warn("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}

func TestSetup_InvalidLevelFallsBackToWarn(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	Setup(&buf, "loquacious", "rid")

	// The fallback itself is reported at warn.
	assert.Contains(t, buf.String(), "Invalid log level")

	buf.Reset()
	slog.Info("quiet")
	assert.Empty(t, buf.String())
}
