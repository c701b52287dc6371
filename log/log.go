// Package log provides the structured logger used across every settlement
// component: sequencer, validator signing, storage, and the API server all
// log through here rather than the standard library's log package.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// logTestWriterName is a sentinel accepted as Init's output argument,
// meaning "write to logTestWriter" instead of a real file or stream. Tests
// swap logTestWriter to control where benchmark/test output goes without
// touching stdout.
const logTestWriterName = "test-writer"

var logTestWriter io.Writer = io.Discard

// panicOnInvalidChars controls whether a log line containing bytes that
// are not valid UTF-8 panics instead of being written with the invalid
// sequences replaced by U+FFFD. Off by
// default; the settlement daemon never sets it, but tests toggle it to
// exercise the check.
var panicOnInvalidChars bool

var logger zerolog.Logger

func init() {
	Init("info", "stderr", nil)
}

// Init (re)configures the global logger. level is one of debug, info,
// warn, error. output selects the destination: "stdout", "stderr", or
// logTestWriterName; any other value is treated as a file path to append
// to. When writer is non-nil it is used directly and output is ignored.
func Init(level, output string, writer io.Writer) {
	var w io.Writer
	switch {
	case writer != nil:
		w = writer
	case output == "stdout":
		w = os.Stdout
	case output == "stderr":
		w = os.Stderr
	case output == logTestWriterName:
		w = logTestWriter
	case output == "":
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			w = os.Stderr
		} else {
			w = f
		}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// checkValid guards against writing malformed UTF-8 into the log sink.
// panicOnInvalidChars exists so tests can assert the guard fires without
// making it fatal in production, where a malformed argument (e.g. raw
// bytes accidentally passed to a %s verb) shouldn't take the process down.
func checkValid(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if panicOnInvalidChars {
		panic(fmt.Sprintf("log: invalid utf8 in message: %q", s))
	}
	return strings.ToValidUTF8(s, "�")
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	logger.Debug().Msg(checkValid(fmt.Sprintf(format, args...)))
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	logger.Info().Msg(checkValid(fmt.Sprintf(format, args...)))
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	logger.Warn().Msg(checkValid(fmt.Sprintf(format, args...)))
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	logger.Error().Msg(checkValid(fmt.Sprintf(format, args...)))
}

// Error logs err at error level.
func Error(err error) {
	logger.Error().Msg(checkValid(err.Error()))
}

// Warn logs err at warn level.
func Warn(err error) {
	logger.Warn().Msg(checkValid(err.Error()))
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Fatal().Msg(checkValid(fmt.Sprintf(format, args...)))
}

// Debugw logs msg at debug level with structured key/value pairs.
func Debugw(msg string, keyvals ...interface{}) {
	withFields(logger.Debug(), keyvals).Msg(checkValid(msg))
}

// Infow logs msg at info level with structured key/value pairs.
func Infow(msg string, keyvals ...interface{}) {
	withFields(logger.Info(), keyvals).Msg(checkValid(msg))
}

// Warnw logs msg at warn level with structured key/value pairs.
func Warnw(msg string, keyvals ...interface{}) {
	withFields(logger.Warn(), keyvals).Msg(checkValid(msg))
}

// Errorw logs msg at error level with structured key/value pairs.
func Errorw(msg string, keyvals ...interface{}) {
	withFields(logger.Error(), keyvals).Msg(checkValid(msg))
}

// withFields attaches keyvals, an alternating key/value list, to e. A
// trailing unpaired key is logged under "extra" rather than dropped.
func withFields(e *zerolog.Event, keyvals []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvals[i])
		}
		e = e.Interface(key, keyvals[i+1])
	}
	if len(keyvals)%2 == 1 {
		e = e.Interface("extra", keyvals[len(keyvals)-1])
	}
	return e
}
