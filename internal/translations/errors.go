package translations

import (
	"errors"
	"fmt"
)

var (
	// ErrLocaleRequired indicates a write without a resolvable locale.
	ErrLocaleRequired = errors.New("translations: locale is required")
	// ErrDuplicateRow indicates a second row for the same record and locale.
	ErrDuplicateRow = errors.New("translations: row already exists for locale")
	// ErrInvalidTranslation is the sentinel matched by ValidationError.
	ErrInvalidTranslation = errors.New("translations: translation is invalid")
)

// ValidationError reports a translation row that failed its attribute rules
// during a flush.
type ValidationError struct {
	Model  string
	Locale string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("translations: %s translation for locale %q is invalid: %v", e.Model, e.Locale, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrInvalidTranslation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidTranslation
}
