package shared

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a logger writing to stderr at the named level.
func SetupLogger(level string) *log.Logger {
	return NewLogger(os.Stderr, level)
}

// NewLogger returns a timestamped logger writing to w. Unknown levels fall back
// to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
