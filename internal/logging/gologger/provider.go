package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/runtimeconfig"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// ProviderName selects this adapter in runtimeconfig.LoggingConfig.
const ProviderName = "gologger"

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

// Option customises the go-logger root logger.
type Option func(*[]glog.Option)

// WithAddSource records the caller location on every entry.
func WithAddSource() Option {
	return func(opts *[]glog.Option) {
		*opts = append(*opts, glog.WithAddSource(true))
	}
}

// Provider hands out go-logger loggers named after globalize modules.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds a go-logger root from the logging settings. The
// Provider field of cfg is not consulted.
func NewProvider(cfg runtimeconfig.LoggingConfig, opts ...Option) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	root := glog.NewLogger(options...)
	if focus := trimmed(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// FromRuntimeConfig returns a provider when cfg selects go-logger and nil
// otherwise; callers treat nil as no-op logging.
func FromRuntimeConfig(cfg runtimeconfig.LoggingConfig) (*Provider, error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Provider), ProviderName) {
		return nil, nil
	}
	return NewProvider(cfg)
}

// GetLogger returns the child logger for a module name such as
// "globalize.finder". A nil provider hands out no-op loggers.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields needs a go-logger implementation with field support; other
// loggers are returned unchanged.
func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return l
	}
	return wrap(with.WithFields(maps.Clone(fields)))
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func trimmed(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
