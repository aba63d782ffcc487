// AngelaMos | 2026
// logger.go

package testutil

import (
	"io"
	"log/slog"
)

// Logger returns a slog.Logger that discards everything. Tests pass it
// wherever a service wants structured logging.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}
