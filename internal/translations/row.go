package translations

import (
	"time"

	"github.com/google/uuid"
)

// Row holds one locale's values for a record's translated attributes.
type Row struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Locale    string
	Values    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRow builds an unsaved row for owner and locale.
func NewRow(id, ownerID uuid.UUID, code string) *Row {
	return &Row{
		ID:      id,
		OwnerID: ownerID,
		Locale:  code,
		Values:  map[string]any{},
	}
}

// Empty reports whether every value on the row is nil.
func (r *Row) Empty() bool {
	if r == nil {
		return true
	}
	for _, value := range r.Values {
		if value != nil {
			return false
		}
	}
	return true
}

// Value returns the stored value for attribute.
func (r *Row) Value(attribute string) any {
	if r == nil || r.Values == nil {
		return nil
	}
	return r.Values[attribute]
}

func cloneRow(src *Row) *Row {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Values = make(map[string]any, len(src.Values))
	for key, value := range src.Values {
		copied.Values[key] = value
	}
	return &copied
}
