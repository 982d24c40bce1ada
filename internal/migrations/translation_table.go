package migrations

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-globalize/internal/registry"
)

// maxIndexName is the length at which index names are replaced by a hash.
const maxIndexName = 50

// Fields maps translated attributes to column types. A nil map uses the
// types declared on the model.
type Fields map[string]registry.FieldType

type columnTypes struct {
	id        string
	text      string
	str       string
	timestamp string
}

func typesFor(name dialect.Name) (columnTypes, error) {
	switch name {
	case dialect.PG:
		return columnTypes{id: "UUID", text: "TEXT", str: "VARCHAR(255)", timestamp: "TIMESTAMPTZ"}, nil
	case dialect.SQLite:
		return columnTypes{id: "TEXT", text: "TEXT", str: "VARCHAR(255)", timestamp: "TIMESTAMP"}, nil
	default:
		return columnTypes{}, fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
}

// ResolveFields merges fields over the model's declared attribute types and
// checks that every field is a translated attribute of a supported type.
func ResolveFields(model *registry.Model, fields Fields) ([]registry.Attribute, error) {
	if model == nil {
		return nil, ErrModelNotTranslatable
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !model.IsTranslated(name) {
			return nil, &MissingTranslatedFieldError{Model: model.Name(), Field: name}
		}
	}

	attrs := model.Attributes()
	for i := range attrs {
		if fieldType, ok := fields[attrs[i].Name]; ok {
			attrs[i].Type = fieldType
		}
		switch attrs[i].Type {
		case registry.FieldString, registry.FieldText:
		default:
			return nil, &BadFieldTypeError{Model: model.Name(), Field: attrs[i].Name, Type: attrs[i].Type}
		}
	}
	return attrs, nil
}

// TranslationTableSQL renders the CREATE TABLE statement for the model's
// translation table.
func TranslationTableSQL(name dialect.Name, model *registry.Model, fields Fields) (string, error) {
	attrs, err := ResolveFields(model, fields)
	if err != nil {
		return "", err
	}
	types, err := typesFor(name)
	if err != nil {
		return "", err
	}

	columns := []string{
		fmt.Sprintf("%q %s PRIMARY KEY", "id", types.id),
		fmt.Sprintf("%q %s NOT NULL", model.ForeignKey(), types.id),
		fmt.Sprintf("%q VARCHAR(32) NOT NULL", "locale"),
	}
	for _, attr := range attrs {
		columnType := types.str
		if attr.Type == registry.FieldText {
			columnType = types.text
		}
		columns = append(columns, fmt.Sprintf("%q %s", attr.Name, columnType))
	}
	columns = append(columns,
		fmt.Sprintf("%q %s", "created_at", types.timestamp),
		fmt.Sprintf("%q %s", "updated_at", types.timestamp),
	)

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (\n  %s\n)", model.TranslationTable(), strings.Join(columns, ",\n  ")), nil
}

// IndexName returns the foreign key index name of the translation table.
func IndexName(model *registry.Model) string {
	return indexName(fmt.Sprintf("index_%s_on_%s", model.TranslationTable(), model.ForeignKey()))
}

// LocaleIndexName returns the name of the unique (owner, locale) index.
func LocaleIndexName(model *registry.Model) string {
	return indexName(fmt.Sprintf("index_%s_on_%s_and_locale", model.TranslationTable(), model.ForeignKey()))
}

func indexName(name string) string {
	if len(name) < maxIndexName {
		return name
	}
	sum := sha1.Sum([]byte(name))
	return "index_" + hex.EncodeToString(sum[:])
}

// CreateTranslationTable creates the model's translation table with a
// foreign key index and a unique index on (owner, locale).
func CreateTranslationTable(ctx context.Context, db bun.IDB, model *registry.Model, fields Fields) error {
	ddl, err := TranslationTableSQL(db.Dialect().Name(), model, fields)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", model.TranslationTable(), err)
	}

	_, err = db.NewCreateIndex().
		Table(model.TranslationTable()).
		Index(IndexName(model)).
		IfNotExists().
		Column(model.ForeignKey()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", IndexName(model), err)
	}

	_, err = db.NewCreateIndex().
		Table(model.TranslationTable()).
		Index(LocaleIndexName(model)).
		Unique().
		IfNotExists().
		Column(model.ForeignKey(), "locale").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", LocaleIndexName(model), err)
	}
	return nil
}

// DropTranslationTable drops the model's translation table and its indexes.
func DropTranslationTable(ctx context.Context, db bun.IDB, model *registry.Model) error {
	if model == nil {
		return ErrModelNotTranslatable
	}
	for _, index := range []string{LocaleIndexName(model), IndexName(model)} {
		if _, err := db.NewDropIndex().Index(index).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop index %s: %w", index, err)
		}
	}
	_, err := db.NewDropTable().Table(model.TranslationTable()).IfExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("drop %s: %w", model.TranslationTable(), err)
	}
	return nil
}
