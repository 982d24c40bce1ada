package globalize

import (
	"errors"

	"github.com/goliatone/go-globalize/internal/finder"
	"github.com/goliatone/go-globalize/internal/migrations"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/internal/translations"
)

var (
	// ErrRecordNotFound is returned when an owner record does not exist.
	ErrRecordNotFound = errors.New("globalize: record not found")
	// ErrRecordNotSaved is returned by operations that need a stored record.
	ErrRecordNotSaved = errors.New("globalize: record has not been saved")
	// ErrNilRecord is returned when a nil record is passed in.
	ErrNilRecord = errors.New("globalize: record is nil")
	// ErrNotStruct is returned when a model type is not a struct pointer.
	ErrNotStruct = errors.New("globalize: translatable models must be struct pointers")
	// ErrUnknownFinder is returned for names that are not dynamic finders.
	ErrUnknownFinder = errors.New("globalize: unknown finder name")

	ErrNoAttributes         = registry.ErrNoAttributes
	ErrModelNotTranslatable = registry.ErrModelNotTranslatable
	ErrDuplicateModel       = registry.ErrDuplicateModel
	ErrUnknownAttribute     = registry.ErrUnknownAttribute
	ErrUnknownColumn        = finder.ErrUnknownColumn
	ErrNotFound             = finder.ErrNotFound
	ErrLocaleRequired       = translations.ErrLocaleRequired
	ErrInvalidTranslation   = translations.ErrInvalidTranslation
)

type (
	UnknownAttributeError       = registry.UnknownAttributeError
	DuplicateModelError         = registry.DuplicateModelError
	UnknownColumnError          = finder.UnknownColumnError
	NotFoundError               = finder.NotFoundError
	ValidationError             = translations.ValidationError
	MissingTranslatedFieldError = migrations.MissingTranslatedFieldError
	BadFieldTypeError           = migrations.BadFieldTypeError
)
