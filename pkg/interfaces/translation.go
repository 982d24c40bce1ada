package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// LocaleResolver exposes the fallback chain used for reads and queries so
// host code can reason about the same locales the adapter probes.
type LocaleResolver interface {
	Resolve(locale string) []string
	DefaultLocale() string
}

// TranslationMeta describes how a translated attribute was resolved.
type TranslationMeta struct {
	RequestedLocale string `json:"requested_locale"`
	ResolvedLocale  string `json:"resolved_locale"`
	FallbackUsed    bool   `json:"fallback_used"`
	Found           bool   `json:"found"`
}

// TranslationSetter applies locale keyed attribute values to a stored record.
type TranslationSetter interface {
	SetTranslationsByID(ctx context.Context, id uuid.UUID, values map[string]map[string]any) error
}

// TranslationSetterRegistry finds the setter registered for a model name.
type TranslationSetterRegistry interface {
	TranslationSetter(model string) (TranslationSetter, error)
}
