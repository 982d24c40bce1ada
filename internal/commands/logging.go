package commands

import (
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// CommandLogger returns the logger for the command handlers of group, for
// example "translations". A blank group logs under the commands root.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	module := logging.ModuleCommands.Child(group)
	return logging.WithFields(logging.ModuleLogger(provider, module), map[string]any{
		"component": "command",
	})
}
