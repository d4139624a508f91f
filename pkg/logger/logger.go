// Package logger provides the process-wide structured logger built on log/slog.
//
// WithCtx returns the request-scoped logger injected by middleware.Logger,
// so every line written while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", order.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/reflaxess123/obedi/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newHandler(os.Stdout))
	slog.SetDefault(L)
}

// newHandler picks JSON output for production and text for everything else.
func newHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Use replaces the base logger. Request loggers created afterwards derive from it.
func Use(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

// Discard silences the base logger. Handy in tests.
func Discard() {
	Use(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// AttachMongo fans log records out to stdout and a MongoDB collection.
// The returned func flushes pending records and disconnects.
func AttachMongo(uri, db, collection string) (func(), error) {
	sink, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return func() {}, err
	}
	Use(slog.New(NewMultiHandler(newHandler(os.Stdout), sink)))
	return sink.Close, nil
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by middleware.Logger.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
