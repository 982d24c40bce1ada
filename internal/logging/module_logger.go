package logging

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// Module is a logger namespace requested from a LoggerProvider.
type Module string

const (
	ModuleRoot         Module = "globalize"
	ModuleTranslations Module = "globalize.translations"
	ModuleFinder       Module = "globalize.finder"
	ModuleRepository   Module = "globalize.repository"
	ModuleMigrations   Module = "globalize.migrations"
	ModuleCommands     Module = "globalize.commands"
	ModuleCLI          Module = "globalize.cli"
)

// Child returns the namespace nested under m.
func (m Module) Child(name string) Module {
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		return m
	}
	return Module(string(m) + "." + name)
}

// ModuleLogger asks provider for the module's logger and tags it with the
// module field. A nil provider, or one returning nil, yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module Module) interfaces.Logger {
	if module == "" {
		module = ModuleRoot
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(string(module))
	}
	if logger == nil {
		return NoOp()
	}
	return WithFields(logger, map[string]any{"module": string(module)})
}

func TranslationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleTranslations)
}

func FinderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleFinder)
}

func RepositoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleRepository)
}

func MigrationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleMigrations)
}

// WithModel tags logger with the translated model name.
func WithModel(logger interfaces.Logger, model string) interfaces.Logger {
	if model = strings.TrimSpace(model); model == "" {
		return logger
	}
	return WithFields(logger, map[string]any{"model": model})
}

// WithRecord tags logger with the owner record id and, when given, the
// locale being written. Zero ids and blank locales are skipped.
func WithRecord(logger interfaces.Logger, id fmt.Stringer, locale string) interfaces.Logger {
	fields := map[string]any{}
	if id != nil {
		if value := id.String(); value != "" && value != zeroUUID {
			fields["record_id"] = value
		}
	}
	if locale = strings.TrimSpace(locale); locale != "" {
		fields["locale"] = locale
	}
	return WithFields(logger, fields)
}

const zeroUUID = "00000000-0000-0000-0000-000000000000"

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
