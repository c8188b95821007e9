package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type Tags map[string]string

// NewTags creates a new Tags from a mix of slog.Attr and alternating
// key/value strings. It ignores incomplete pairs and other types.
func NewTags(args ...any) Tags {
	var done bool
	tags := Tags{}
	for len(args) > 0 && !done {
		switch x := args[0].(type) {
		case slog.Attr:
			tags[x.Key] = x.Value.String()
			args = args[1:]
		case string:
			if len(args) < 2 {
				done = true
				break
			}
			attr := slog.Any(x, args[1])
			tags[attr.Key] = attr.Value.String()
			args = args[2:]
		default:
			args = args[1:]
		}
	}
	return tags
}

const LevelFatal = slog.Level(12)

// ErrorSink receives captured errors and messages for out-of-band reporting.
// The TUI installs a sink that surfaces captures in the status bar; tests
// install a recording sink. A nil sink is valid and drops captures.
type ErrorSink interface {
	CaptureException(err error, tags Tags)
	CaptureMessage(msg string, tags Tags)
}

type CoreLoggerParams struct {
	Sink ErrorSink
	Tags Tags
}

// CoreLogger wraps slog with tag propagation and a capture seam: Capture*
// methods log and additionally forward to the configured ErrorSink so that
// operator-visible problems are not buried in the debug log.
type CoreLogger struct {
	*slog.Logger
	baseTags Tags
	sink     ErrorSink
}

func NewCoreLogger(logger *slog.Logger, params *CoreLoggerParams) *CoreLogger {
	if params == nil {
		params = &CoreLoggerParams{}
	}

	tags := Tags{}
	var args []any
	for key, value := range params.Tags {
		args = append(args, slog.String(key, value))
		tags[key] = value
	}

	return &CoreLogger{
		Logger:   logger.With(args...),
		sink:     params.Sink,
		baseTags: tags,
	}
}

// withArgs merges the given args with the logger's base tags. Base tags take
// precedence.
func (cl *CoreLogger) withArgs(args ...any) Tags {
	tags := NewTags(args...)
	for key, value := range cl.baseTags {
		tags[key] = value
	}
	return tags
}

// With returns a derived logger that includes the given tags in each message.
func (cl *CoreLogger) With(args ...any) *CoreLogger {
	return &CoreLogger{
		Logger:   cl.Logger.With(args...),
		baseTags: cl.baseTags,
		sink:     cl.sink,
	}
}

// CaptureError logs an error and forwards it to the sink.
func (cl *CoreLogger) CaptureError(err error, args ...any) {
	cl.Error(err.Error(), args...)

	if cl.sink != nil {
		cl.sink.CaptureException(err, cl.withArgs(args...))
	}
}

// CaptureFatal logs a fatal error and forwards it to the sink.
func (cl *CoreLogger) CaptureFatal(err error, args ...any) {
	cl.Log(context.Background(), LevelFatal, err.Error(), args...)

	if cl.sink != nil {
		cl.sink.CaptureException(err, cl.withArgs(args...))
	}
}

// CaptureFatalAndPanic logs a fatal error, forwards it to the sink and
// panics.
func (cl *CoreLogger) CaptureFatalAndPanic(err error, args ...any) {
	if err == nil {
		err = errors.New("observability: panicked with nil error")
	}
	cl.CaptureFatal(err, args...)
	panic(err)
}

// CaptureWarn logs a warning and forwards it to the sink.
func (cl *CoreLogger) CaptureWarn(msg string, args ...any) {
	cl.Warn(msg, args...)

	if cl.sink != nil {
		cl.sink.CaptureMessage(msg, cl.withArgs(args...))
	}
}

// Reraise captures an in-flight panic and panics again. Deferred at the top
// of goroutines whose crash should reach the sink before taking the process
// down.
func (cl *CoreLogger) Reraise(args ...any) {
	if v := recover(); v != nil {
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", v)
		}
		cl.CaptureError(err, args...)
		panic(v)
	}
}

// GetTags returns the tags associated with the logger.
//
// Used for testing.
func (cl *CoreLogger) GetTags() Tags {
	return cl.baseTags
}

// NewNoOpLogger returns a logger that discards all messages.
//
// Used for testing.
func NewNoOpLogger() *CoreLogger {
	return NewCoreLogger(
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		nil,
	)
}
