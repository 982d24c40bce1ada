package registry

import (
	"reflect"
	"strings"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jinzhu/inflection"

	"github.com/goliatone/go-globalize/internal/locale"
)

// FieldType is the semantic column type of a translated attribute.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldText   FieldType = "text"
)

// Attribute describes one translated attribute.
type Attribute struct {
	Name  string
	Type  FieldType
	Rules []validation.Rule
}

// Required reports whether the attribute carries a presence rule.
func (a Attribute) Required() bool {
	for _, rule := range a.Rules {
		if isPresenceRule(rule) {
			return true
		}
	}
	return false
}

func isPresenceRule(rule validation.Rule) bool {
	required, ok := rule.(validation.RequiredRule)
	if !ok {
		return false
	}
	return !reflect.DeepEqual(required, validation.NilOrNotEmpty)
}

// Owner describes the owner side of a translatable model.
type Owner struct {
	// Name identifies the model in logs, errors and locale scopes.
	Name string
	// Table is the owner table name.
	Table string
	// Alias is the owner table alias used when qualifying owner columns.
	Alias string
	// PrimaryKey is the owner primary key column, "id" when empty.
	PrimaryKey string
	// Columns lists the owner columns, used to validate finder predicates.
	Columns []string
	// Type is the Go type registered for the model, when known.
	Type reflect.Type
}

// Option customises a model declaration.
type Option func(*Model)

// WithTableName overrides the translation table name.
func WithTableName(name string) Option {
	return func(m *Model) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			m.translationTable = trimmed
		}
	}
}

// WithForeignKey overrides the owner foreign key column on the translation table.
func WithForeignKey(column string) Option {
	return func(m *Model) {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			m.foreignKey = trimmed
		}
	}
}

// WithFieldType sets the semantic column type of a translated attribute.
func WithFieldType(attribute string, fieldType FieldType) Option {
	return func(m *Model) {
		if idx, ok := m.index[attribute]; ok {
			m.attributes[idx].Type = fieldType
		}
	}
}

// WithRules attaches validation rules to a translated attribute. Attributes
// carrying validation.Required become required attributes of the model.
func WithRules(attribute string, rules ...validation.Rule) Option {
	return func(m *Model) {
		if idx, ok := m.index[attribute]; ok {
			m.attributes[idx].Rules = append(m.attributes[idx].Rules, rules...)
		}
	}
}

// WithDefaultLocale seeds the per-model locale.
func WithDefaultLocale(code string) Option {
	return func(m *Model) {
		m.SetLocale(code)
	}
}

// Model is the declarative registry entry of a translatable record type.
// Its attribute set is immutable once built; only the per-model locale can
// change afterwards.
type Model struct {
	name             string
	table            string
	alias            string
	primaryKey       string
	columns          map[string]struct{}
	goType           reflect.Type
	translationTable string
	foreignKey       string
	attributes       []Attribute
	index            map[string]int
	locale           atomic.Value
}

// NewModel builds a model declaration for the owner described by owner.
func NewModel(owner Owner, attributes []string, opts ...Option) (*Model, error) {
	name := strings.TrimSpace(owner.Name)
	table := strings.TrimSpace(owner.Table)
	if name == "" || table == "" {
		return nil, ErrInvalidOwner
	}

	m := &Model{
		name:       name,
		table:      table,
		alias:      strings.TrimSpace(owner.Alias),
		primaryKey: strings.TrimSpace(owner.PrimaryKey),
		goType:     owner.Type,
		index:      make(map[string]int, len(attributes)),
	}
	if m.alias == "" {
		m.alias = table
	}
	if m.primaryKey == "" {
		m.primaryKey = "id"
	}
	if len(owner.Columns) > 0 {
		m.columns = make(map[string]struct{}, len(owner.Columns))
		for _, column := range owner.Columns {
			m.columns[column] = struct{}{}
		}
	}

	for _, attr := range attributes {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		if _, dup := m.index[attr]; dup {
			continue
		}
		m.index[attr] = len(m.attributes)
		m.attributes = append(m.attributes, Attribute{Name: attr, Type: FieldString})
	}
	if len(m.attributes) == 0 {
		return nil, ErrNoAttributes
	}

	singular := inflection.Singular(table)
	m.translationTable = singular + "_translations"
	m.foreignKey = singular + "_id"

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Table returns the owner table name.
func (m *Model) Table() string { return m.table }

// Alias returns the owner table alias.
func (m *Model) Alias() string { return m.alias }

// PrimaryKey returns the owner primary key column.
func (m *Model) PrimaryKey() string { return m.primaryKey }

// Type returns the Go type registered for the model, if any.
func (m *Model) Type() reflect.Type { return m.goType }

// TranslationTable returns the translation table name.
func (m *Model) TranslationTable() string { return m.translationTable }

// ForeignKey returns the owner foreign key column on the translation table.
func (m *Model) ForeignKey() string { return m.foreignKey }

// AttributeNames returns the translated attribute names in declaration order.
func (m *Model) AttributeNames() []string {
	out := make([]string, len(m.attributes))
	for i, attr := range m.attributes {
		out[i] = attr.Name
	}
	return out
}

// Attributes returns a copy of the translated attribute descriptors.
func (m *Model) Attributes() []Attribute {
	out := make([]Attribute, len(m.attributes))
	copy(out, m.attributes)
	return out
}

// Attribute returns the descriptor for name.
func (m *Model) Attribute(name string) (Attribute, bool) {
	idx, ok := m.index[name]
	if !ok {
		return Attribute{}, false
	}
	return m.attributes[idx], true
}

// IsTranslated reports whether name is a declared translated attribute.
func (m *Model) IsTranslated(name string) bool {
	_, ok := m.index[name]
	return ok
}

// HasColumn reports whether name is an owner column. Models built without
// column metadata accept every name.
func (m *Model) HasColumn(name string) bool {
	if m.columns == nil {
		return true
	}
	_, ok := m.columns[name]
	return ok
}

// CheckAttribute returns an UnknownAttributeError when name is not translated.
func (m *Model) CheckAttribute(name string) error {
	if m.IsTranslated(name) {
		return nil
	}
	return &UnknownAttributeError{Model: m.name, Attribute: name}
}

// RequiredAttributes lists attributes that must be non-null on a persisted
// translation row.
func (m *Model) RequiredAttributes() []string {
	var out []string
	for _, attr := range m.attributes {
		if attr.Required() {
			out = append(out, attr.Name)
		}
	}
	return out
}

// Validate checks values against the attribute rules. Attributes missing
// from values are validated as nil.
func (m *Model) Validate(values map[string]any) error {
	errs := validation.Errors{}
	for _, attr := range m.attributes {
		if len(attr.Rules) == 0 {
			continue
		}
		if err := validation.Validate(values[attr.Name], attr.Rules...); err != nil {
			errs[attr.Name] = err
		}
	}
	return errs.Filter()
}

// Locale returns the per-model locale, empty when unset.
func (m *Model) Locale() string {
	code, _ := m.locale.Load().(string)
	return code
}

// SetLocale sets the per-model locale. An empty code clears it.
func (m *Model) SetLocale(code string) {
	m.locale.Store(locale.Normalize(code))
}
