// Package gologger bridges github.com/goliatone/go-logger into the logging
// contracts used across the wiki module.
package gologger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Config mirrors the logging section of the runtime configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Provider hands out named child loggers from a shared go-logger root.
type Provider struct {
	root *glog.BaseLogger
}

var levelNames = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// NewProvider builds the go-logger root from cfg. An empty level or format
// falls back to go-logger defaults (JSON output); unknown formats error so
// misconfiguration surfaces at startup instead of producing silent output.
func NewProvider(cfg Config) (*Provider, error) {
	var opts []glog.Option

	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		opts = append(opts, glog.WithLevel(lvl))
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case "", "json":
		opts = append(opts, glog.WithLoggerTypeJSON())
	case "console":
		opts = append(opts, glog.WithLoggerTypeConsole())
	case "pretty":
		opts = append(opts, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("gologger: unknown format %q", cfg.Format)
	}

	if cfg.AddSource {
		opts = append(opts, glog.WithAddSource(true))
	}

	root := glog.NewLogger(opts...)

	focus := cfg.Focus[:0:0]
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}

	return &Provider{root: root}, nil
}

// GetLogger implements interfaces.LoggerProvider. An empty name yields the
// root logger rather than a child.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return glogAdapter{inner: inner}
}

// glogAdapter narrows a go-logger Logger down to the wiki Logger interface.
type glogAdapter struct {
	inner glog.Logger
}

func (a glogAdapter) Trace(msg string, args ...any) { a.inner.Trace(msg, args...) }
func (a glogAdapter) Debug(msg string, args ...any) { a.inner.Debug(msg, args...) }
func (a glogAdapter) Info(msg string, args ...any)  { a.inner.Info(msg, args...) }
func (a glogAdapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, args...) }
func (a glogAdapter) Error(msg string, args ...any) { a.inner.Error(msg, args...) }
func (a glogAdapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, args...) }

func (a glogAdapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	return adapt(a.inner.WithContext(ctx))
}

func (a glogAdapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return a
	}

	if fl, ok := a.inner.(glog.FieldsLogger); ok {
		snapshot := make(map[string]any, len(fields))
		for k, v := range fields {
			snapshot[k] = v
		}
		return adapt(fl.WithFields(snapshot))
	}

	// The underlying logger only supports variadic pairs; sort keys so the
	// emitted attribute order is stable.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, fields[k])
	}
	if w, ok := a.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return adapt(w.With(pairs...))
	}
	return a
}
