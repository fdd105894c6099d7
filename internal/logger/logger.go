package logger

import "go.uber.org/zap"

// New returns a structured logger writing to the given file. The TUI owns
// stdout/stderr, so nothing may log to the terminal.
func New(path string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
