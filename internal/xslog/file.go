package xslog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// OpenFile builds a logger that appends JSON lines to path. The terminal is
// owned by the UI, so the interactive command never logs to stderr.
func OpenFile(path string, level Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return NewLogger(f, level), f, nil
}
