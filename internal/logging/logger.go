package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewHandler returns the tint handler used by the service. Dev output is
// colored, uses short timestamps and carries the call site; other
// environments get plain RFC 3339 lines without source.
func NewHandler(w io.Writer, level slog.Level, dev bool) slog.Handler {
	if dev {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
}

func InitLogger(level slog.Level, dev bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, level, dev)))
}
