package globalize

import (
	"errors"

	"github.com/goliatone/go-globalize/internal/commands"
	translationscmd "github.com/goliatone/go-globalize/internal/commands/translations"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures where command handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
	// LoggerProvider overrides the module provider for command logs.
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult captures the constructed handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterCommands builds the module's command handlers and registers them
// with the registry and dispatcher in opts. Handlers are built even when no
// registrar is given. Registration errors are joined; handlers that failed
// to register stay in the result.
func (m *Module) RegisterCommands(opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	var errs error

	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)
		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	var setOpts []commands.HandlerOption[translationscmd.SetTranslationsCommand]
	if opts.LoggerProvider != nil {
		logger := commands.CommandLogger(opts.LoggerProvider, "translations")
		setOpts = append(setOpts, commands.WithLogger[translationscmd.SetTranslationsCommand](logger))
	}
	register(m.SetTranslationsHandler(setOpts...))

	return result, errs
}
