// Package logging configures the process-wide structured logger and
// generates run identifiers for correlating diagnostics.
package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateRunID generates a new UUID v4 for run identification
func GenerateRunID() string {
	return uuid.New().String()
}

// Build information, injected at link time.
var (
	gitCommit    = "unknown"
	buildVersion = "dev"
)

// GetBuildInfo returns the git commit and version baked into the binary.
func GetBuildInfo() (commit, version string) {
	return gitCommit, buildVersion
}

// Setup installs the default logger as a text handler writing to w, which
// should be stderr: the escaped tokens own stdout, so every diagnostic goes
// to the other stream. An unparseable level falls back to warn.
func Setup(w io.Writer, level, runID string) {
	var slogLevel slog.Level
	var invalidLogLevel bool
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		slogLevel = slog.LevelWarn
		invalidLogLevel = true
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	})
	enrichedHandler := textHandler.WithAttrs([]slog.Attr{
		slog.String("run_id", runID),
	})
	slog.SetDefault(slog.New(enrichedHandler))

	if invalidLogLevel {
		slog.Warn("Invalid log level specified, using warn",
			"provided_level", level)
	}
}
