package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type loggerContextKey struct{}

// NewRunLogger creates the root logger for one run of a command.
//
// All records carry the run id and the active trace/span ids, if any.
func NewRunLogger(w io.Writer, runID string) *slog.Logger {
	handler := NewTracingLogHandler(slog.NewJSONHandler(w, nil))
	return slog.New(handler).With(slog.String("runID", runID))
}

func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		fallback := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		fallback = fallback.With(slog.String("logger", "fallback"))
		return fallback
	}
	return logger
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func AddMetaToContext(ctx context.Context, args ...slog.Attr) context.Context {
	logger := FromContext(ctx)

	// Convert our []slog.Attr to []any
	anySlice := make([]any, len(args))
	for i, arg := range args {
		anySlice[i] = arg
	}

	withMeta := logger.With(anySlice...)

	return AddToContext(ctx, withMeta)
}
