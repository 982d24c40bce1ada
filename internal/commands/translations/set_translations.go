package translationscmd

import (
	"context"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/commands"
	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

const setTranslationsMessageType = "globalize.translations.set"

// SetTranslationsCommand stores several locales of a record's translated
// attributes in one call.
type SetTranslationsCommand struct {
	Model        string                    `json:"model"`
	RecordID     uuid.UUID                 `json:"record_id"`
	Translations map[string]map[string]any `json:"translations"`
}

// Type implements command.Message.
func (SetTranslationsCommand) Type() string { return setTranslationsMessageType }

// Validate ensures the message names a record and at least one locale.
func (m SetTranslationsCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Model) == "" {
		errs["model"] = validation.NewError("globalize.translations.set.model_required", "model is required")
	}
	if m.RecordID == uuid.Nil {
		errs["record_id"] = validation.NewError("globalize.translations.set.record_id_required", "record_id is required")
	}
	if len(m.Translations) == 0 {
		errs["translations"] = validation.NewError("globalize.translations.set.translations_required", "at least one locale is required")
	}
	for code := range m.Translations {
		if locale.Normalize(code) == "" {
			errs["translations"] = validation.NewError("globalize.translations.set.locale_invalid", "locale keys must not be blank")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetTranslationsHandler routes the command to the setter of its model.
type SetTranslationsHandler struct {
	inner *commands.Handler[SetTranslationsCommand]
}

// NewSetTranslationsHandler constructs a handler over the registered models.
func NewSetTranslationsHandler(setters interfaces.TranslationSetterRegistry, logger interfaces.Logger, opts ...commands.HandlerOption[SetTranslationsCommand]) *SetTranslationsHandler {
	exec := func(ctx context.Context, msg SetTranslationsCommand) error {
		setter, err := setters.TranslationSetter(strings.TrimSpace(msg.Model))
		if err != nil {
			return err
		}
		return setter.SetTranslationsByID(ctx, msg.RecordID, msg.Translations)
	}

	handlerOpts := []commands.HandlerOption[SetTranslationsCommand]{
		commands.WithLogger[SetTranslationsCommand](logger),
		commands.WithOperation[SetTranslationsCommand]("translations.set"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SetTranslationsHandler{
		inner: commands.NewHandler[SetTranslationsCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SetTranslationsCommand].Execute.
func (h *SetTranslationsHandler) Execute(ctx context.Context, msg SetTranslationsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LogFields annotates handler log entries with the target record.
func (m SetTranslationsCommand) LogFields() map[string]any {
	locales := make([]string, 0, len(m.Translations))
	for code := range m.Translations {
		locales = append(locales, locale.Normalize(code))
	}
	slices.Sort(locales)
	return map[string]any{
		"model":     m.Model,
		"record_id": m.RecordID.String(),
		"locales":   locales,
	}
}
