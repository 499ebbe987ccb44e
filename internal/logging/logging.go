// Package logging builds the service-wide slog logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New returns a logger writing to stdout. In debug mode it uses tint for
// colourised, human-readable output; otherwise JSON for log shippers.
func New(debug bool) *slog.Logger {
	var handler slog.Handler
	if debug {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "2006-01-02 15:04:05",
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}
