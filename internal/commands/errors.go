package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/internal/translations"
)

type stage int

const (
	stageValidate stage = iota
	stageContext
	stageExecute
)

type errorRule struct {
	target error
	wrap   func(error) error
}

func commandError(message, code string) func(error) error {
	return func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
	}
}

func validationError(message, code string) func(error) error {
	return func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(code)
	}
}

// contextRules and executeRules are matched in order with errors.Is.
var (
	contextRules = []errorRule{
		{context.Canceled, commandError("command execution cancelled", "COMMAND_CONTEXT_CANCELED")},
		{context.DeadlineExceeded, commandError("command execution deadline exceeded", "COMMAND_CONTEXT_TIMEOUT")},
	}
	executeRules = []errorRule{
		{translations.ErrInvalidTranslation, validationError("translation failed validation", "TRANSLATION_INVALID")},
		{registry.ErrUnknownAttribute, validationError("attribute is not translated", "TRANSLATION_ATTRIBUTE_UNKNOWN")},
	}
)

// categorize tags err with a go-errors category for the stage it failed in.
// Errors that already carry a category pass through.
func categorize(at stage, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch at {
	case stageValidate:
		return validationError("command validation failed", "COMMAND_VALIDATION_FAILED")(err)
	case stageContext:
		return applyRules(err, contextRules, commandError("command context error", "COMMAND_CONTEXT_ERROR"))
	default:
		return applyRules(err, executeRules, commandError("command execution failed", "COMMAND_EXECUTION_FAILED"))
	}
}

func applyRules(err error, rules []errorRule, fallback func(error) error) error {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			return rule.wrap(err)
		}
	}
	return fallback(err)
}
