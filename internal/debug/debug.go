// Package debug writes structured diagnostics to a repository-local log
// file. Hook handlers must never print to the host git command's streams, so
// everything lands in .git/git-ai/logs/.
package debug

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger wraps the file-backed diagnostic logger.
type Logger struct {
	zl zerolog.Logger
	f  *os.File
}

// Open returns a logger appending to logsDir/git-ai.log. verbose lowers the
// level to Debug. Errors are swallowed into a no-op logger; diagnostics must
// never break the host operation.
func Open(logsDir string, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return &Logger{zl: zerolog.Nop()}
	}
	f, err := os.OpenFile(filepath.Join(logsDir, "git-ai.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{zl: zerolog.Nop()}
	}
	zl := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl, f: f}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Close releases the underlying file.
func (l *Logger) Close() {
	if l.f != nil {
		_ = l.f.Close()
	}
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
