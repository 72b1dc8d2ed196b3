// Package obslog wraps go-kit/log (+ level) in the leveled-logger shape
// used across the retrieval pack (log.NewLogfmtLogger / level.Info(logger)
// .Log(...)), so the miner, FP-tree build, and CLI driver can log
// structured lines instead of writing directly to stderr. Jaxan-partition
// carries no logging of its own; this is a pure ambient-stack addition.
package obslog

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a logfmt logger writing to w, timestamped, filtered to the
// given minimum level ("debug", "info", "error"; anything else defaults
// to info).
func New(w io.Writer, minLevel string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, filterOption(minLevel))
}

// Nop returns a logger that discards everything, for callers (tests,
// library use of this module) that don't want diagnostic output.
func Nop() log.Logger {
	return log.NewNopLogger()
}

// Default returns a logfmt logger to stderr at info level, the CLI
// driver's default.
func Default() log.Logger {
	return New(os.Stderr, "info")
}

func filterOption(minLevel string) level.Option {
	switch minLevel {
	case "debug":
		return level.AllowDebug()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// Info logs an info-level line, attr being ("key", value, "key", value...).
func Info(logger log.Logger, msg string, keyvals ...interface{}) {
	level.Info(logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Debug logs a debug-level line.
func Debug(logger log.Logger, msg string, keyvals ...interface{}) {
	level.Debug(logger).Log(append([]interface{}{"msg", msg}, keyvals...)...)
}

// Error logs an error-level line.
func Error(logger log.Logger, msg string, err error, keyvals ...interface{}) {
	level.Error(logger).Log(append([]interface{}{"msg", msg, "err", err}, keyvals...)...)
}
