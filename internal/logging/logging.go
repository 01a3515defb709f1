// Package logging builds the structured logger shared by the registry
// installer and the boot orchestrator.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tiagomgelias/kernel/internal/branding"
)

// New returns a logger writing to w at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: branding.CLIName(),
	})
}

// Discard returns a logger that drops everything. Useful as a default for
// library callers that do not care about output.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
