// Package logger is the structured, levelled logger used across nuber,
// built on log/slog.
//
// WithCtx returns the per-request logger injected by the HTTP middleware, so
// lines written from a resolver or service carry the request_id:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order created", "order_id", order.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/nuber-eats/nuber/config"
)

var L *slog.Logger

var (
	sinkMu sync.Mutex
	sink   *MongoHandler
)

func init() {
	L = slog.New(newConsoleHandler(os.Stdout, config.AppEnv()))
	slog.SetDefault(L)
}

func newConsoleHandler(w io.Writer, env string) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// AttachMongo fans every log record out to a MongoDB collection as well as
// stdout. It is a no-op when LOG_MONGO_URI is empty.
func AttachMongo() error {
	uri := config.LogMongoURI()
	if uri == "" {
		return nil
	}

	h, err := NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
	if err != nil {
		return err
	}

	sinkMu.Lock()
	sink = h
	sinkMu.Unlock()

	L = slog.New(teeHandler{newConsoleHandler(os.Stdout, config.AppEnv()), h})
	slog.SetDefault(L)
	return nil
}

// Close flushes the MongoDB sink, if one is attached.
func Close() {
	sinkMu.Lock()
	h := sink
	sink = nil
	sinkMu.Unlock()

	if h != nil {
		h.Close()
	}
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base
// logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
