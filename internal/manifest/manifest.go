package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-globalize/internal/registry"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "manifest.json"

var (
	// ErrInvalidManifest is matched by ValidationError.
	ErrInvalidManifest = errors.New("manifest: invalid manifest")

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Manifest declares translatable models outside Go code, for tooling that
// has no access to the model types.
type Manifest struct {
	Models []Model `yaml:"models" json:"models"`
}

// Model describes one owner table and its translated attributes.
type Model struct {
	Name             string      `yaml:"name" json:"name"`
	Table            string      `yaml:"table" json:"table"`
	Alias            string      `yaml:"alias,omitempty" json:"alias,omitempty"`
	PrimaryKey       string      `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Columns          []string    `yaml:"columns,omitempty" json:"columns,omitempty"`
	TranslationTable string      `yaml:"translation_table,omitempty" json:"translation_table,omitempty"`
	ForeignKey       string      `yaml:"foreign_key,omitempty" json:"foreign_key,omitempty"`
	Locale           string      `yaml:"locale,omitempty" json:"locale,omitempty"`
	Attributes       []Attribute `yaml:"attributes" json:"attributes"`
}

// Attribute is a translated attribute entry.
type Attribute struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
	Required  bool   `yaml:"required,omitempty" json:"required,omitempty"`
	MaxLength int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists every schema violation found in a manifest.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("manifest: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidManifest
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML (or JSON) manifest and validates it against the
// embedded schema before building the typed value.
func Parse(data []byte) (*Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	document, err := toJSONValue(raw)
	if err != nil {
		return nil, err
	}

	schema, err := manifestSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(document); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Issues: collectIssues(verr)}
		}
		return nil, fmt.Errorf("manifest: validate: %w", err)
	}

	var out Manifest
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &out, nil
}

// Owner returns the owner description of the model.
func (m Model) Owner() registry.Owner {
	return registry.Owner{
		Name:       m.Name,
		Table:      m.Table,
		Alias:      m.Alias,
		PrimaryKey: m.PrimaryKey,
		Columns:    append([]string(nil), m.Columns...),
	}
}

// AttributeNames lists the attributes in manifest order.
func (m Model) AttributeNames() []string {
	names := make([]string, len(m.Attributes))
	for i, attr := range m.Attributes {
		names[i] = attr.Name
	}
	return names
}

// Options converts the manifest settings into registry options.
func (m Model) Options() []registry.Option {
	var opts []registry.Option
	if m.TranslationTable != "" {
		opts = append(opts, registry.WithTableName(m.TranslationTable))
	}
	if m.ForeignKey != "" {
		opts = append(opts, registry.WithForeignKey(m.ForeignKey))
	}
	if m.Locale != "" {
		opts = append(opts, registry.WithDefaultLocale(m.Locale))
	}
	for _, attr := range m.Attributes {
		if attr.Type != "" {
			opts = append(opts, registry.WithFieldType(attr.Name, registry.FieldType(attr.Type)))
		}
		var rules []validation.Rule
		if attr.Required {
			rules = append(rules, validation.Required)
		}
		if attr.MaxLength > 0 {
			rules = append(rules, validation.RuneLength(0, attr.MaxLength))
		}
		if len(rules) > 0 {
			opts = append(opts, registry.WithRules(attr.Name, rules...))
		}
	}
	return opts
}

// Register declares every model of the manifest in reg.
func (m *Manifest) Register(reg *registry.Registry) ([]*registry.Model, error) {
	models := make([]*registry.Model, 0, len(m.Models))
	for _, entry := range m.Models {
		model, _, err := reg.Translates(entry.Owner(), entry.AttributeNames(), entry.Options()...)
		if err != nil {
			return nil, fmt.Errorf("manifest: model %s: %w", entry.Name, err)
		}
		models = append(models, model)
	}
	return models, nil
}

// Lookup returns the manifest entry called name.
func (m *Manifest) Lookup(name string) (Model, bool) {
	for _, entry := range m.Models {
		if entry.Name == name {
			return entry, true
		}
	}
	return Model{}, false
}

func manifestSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("manifest: schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("manifest: schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// toJSONValue round trips a YAML document through encoding/json so the
// validator sees JSON types only.
func toJSONValue(raw any) (any, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return out, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
