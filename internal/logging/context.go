package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// contextHandler adds attrs stored in the context to every record, so a
// single attribute set in main (the database name) shows up on all log
// lines of the invocation.
type contextHandler struct {
	h slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := ctx.Value(contextKey{})
	if attrs != nil {
		r.AddAttrs(attrs.([]slog.Attr)...)
	}
	return h.h.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{h: h.h.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{h: h.h.WithGroup(name)}
}

func (h *contextHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.h.Enabled(ctx, l)
}

func PopulateContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	oldAttrs := ctx.Value(contextKey{})
	if oldAttrs != nil {
		attrs = append(oldAttrs.([]slog.Attr), attrs...)
	}
	return context.WithValue(ctx, contextKey{}, attrs)
}
