package gpu

import (
	"context"
	"errors"
	"log/slog"
)

// nopHandler drops every record; Enabled returns false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Context is the graphics state shared by batches and renderers. It is built
// explicitly and passed down, so several independent contexts can coexist.
type Context struct {
	Device        Device
	GlobalSampler Sampler
	Logger        *slog.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger used by everything built on the context.
func WithLogger(l *slog.Logger) ContextOption {
	return func(c *Context) { c.Logger = l }
}

// NewContext wires a device and the default sampler together.
func NewContext(dev Device, sampler Sampler, opts ...ContextOption) (*Context, error) {
	if dev == nil {
		return nil, errors.New("gpu: nil device")
	}
	if sampler == nil {
		return nil, errors.New("gpu: nil global sampler")
	}
	c := &Context{Device: dev, GlobalSampler: sampler}
	for _, o := range opts {
		o(c)
	}
	if c.Logger == nil {
		c.Logger = slog.New(nopHandler{})
	}
	return c, nil
}

// Log returns the context logger, never nil.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(nopHandler{})
	}
	return c.Logger
}
