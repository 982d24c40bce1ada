package translations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-globalize/internal/registry"
)

const (
	columnID        = "id"
	columnLocale    = "locale"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

// BunStore persists rows in the model's translation table. Tables differ per
// model, so rows travel as column maps instead of struct models.
type BunStore struct {
	db bun.IDB
}

// NewBunStore builds a store over a database or transaction handle.
func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *BunStore) WithTx(tx bun.IDB) *BunStore {
	return &BunStore{db: tx}
}

var _ Store = (*BunStore)(nil)

// Get returns the row for (ownerID, locale).
func (s *BunStore) Get(ctx context.Context, model *registry.Model, ownerID uuid.UUID, locale string) (*Row, error) {
	var records []map[string]any
	err := s.selectRows(model, ownerID).
		Where("? = ?", bun.Ident(columnLocale), locale).
		Limit(1).
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", model.TranslationTable(), err)
	}
	if len(records) == 0 {
		return nil, ErrRowNotFound
	}
	return decodeRow(model, records[0])
}

// ListByLocales returns the owner's rows for the given locales.
func (s *BunStore) ListByLocales(ctx context.Context, model *registry.Model, ownerID uuid.UUID, locales []string) ([]*Row, error) {
	if len(locales) == 0 {
		return nil, nil
	}
	var records []map[string]any
	err := s.selectRows(model, ownerID).
		Where("? IN (?)", bun.Ident(columnLocale), bun.In(locales)).
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", model.TranslationTable(), err)
	}
	return decodeRows(model, records)
}

// List returns every row of the owner ordered by locale.
func (s *BunStore) List(ctx context.Context, model *registry.Model, ownerID uuid.UUID) ([]*Row, error) {
	var records []map[string]any
	err := s.selectRows(model, ownerID).
		OrderExpr("? ASC", bun.Ident(columnLocale)).
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", model.TranslationTable(), err)
	}
	return decodeRows(model, records)
}

// ListForOwners returns the rows of several owners in one locale.
func (s *BunStore) ListForOwners(ctx context.Context, model *registry.Model, ownerIDs []uuid.UUID, locale string) ([]*Row, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	q := s.db.NewSelect().TableExpr("?", bun.Ident(model.TranslationTable()))
	for _, column := range rowColumns(model) {
		q = q.ColumnExpr("?", bun.Ident(column))
	}
	var records []map[string]any
	err := q.Where("? IN (?)", bun.Ident(model.ForeignKey()), bun.In(ownerIDs)).
		Where("? = ?", bun.Ident(columnLocale), locale).
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", model.TranslationTable(), err)
	}
	return decodeRows(model, records)
}

// Locales returns the distinct stored locales of the owner.
func (s *BunStore) Locales(ctx context.Context, model *registry.Model, ownerID uuid.UUID) ([]string, error) {
	var locales []string
	err := s.db.NewSelect().
		TableExpr("?", bun.Ident(model.TranslationTable())).
		ColumnExpr("DISTINCT ?", bun.Ident(columnLocale)).
		Where("? = ?", bun.Ident(model.ForeignKey()), ownerID).
		OrderExpr("? ASC", bun.Ident(columnLocale)).
		Scan(ctx, &locales)
	if err != nil {
		return nil, fmt.Errorf("select %s locales: %w", model.TranslationTable(), err)
	}
	return locales, nil
}

// Insert writes a new row.
func (s *BunStore) Insert(ctx context.Context, model *registry.Model, row *Row) error {
	values := map[string]any{
		columnID:           row.ID,
		model.ForeignKey(): row.OwnerID,
		columnLocale:       row.Locale,
		columnCreatedAt:    row.CreatedAt,
		columnUpdatedAt:    row.UpdatedAt,
	}
	for _, attribute := range model.AttributeNames() {
		values[attribute] = row.Values[attribute]
	}
	_, err := s.db.NewInsert().
		Model(&values).
		TableExpr("?", bun.Ident(model.TranslationTable())).
		Exec(ctx)
	return err
}

// Update writes the attribute values of an existing row.
func (s *BunStore) Update(ctx context.Context, model *registry.Model, row *Row) error {
	values := map[string]any{
		columnUpdatedAt: row.UpdatedAt,
	}
	for _, attribute := range model.AttributeNames() {
		if value, ok := row.Values[attribute]; ok {
			values[attribute] = value
		}
	}
	res, err := s.db.NewUpdate().
		Model(&values).
		TableExpr("?", bun.Ident(model.TranslationTable())).
		Where("? = ?", bun.Ident(columnID), row.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRowNotFound
	}
	return nil
}

// DeleteByOwner removes every row of the owner.
func (s *BunStore) DeleteByOwner(ctx context.Context, model *registry.Model, ownerID uuid.UUID) (int, error) {
	res, err := s.db.NewDelete().
		TableExpr("?", bun.Ident(model.TranslationTable())).
		Where("? = ?", bun.Ident(model.ForeignKey()), ownerID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", model.TranslationTable(), err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (s *BunStore) selectRows(model *registry.Model, ownerID uuid.UUID) *bun.SelectQuery {
	q := s.db.NewSelect().TableExpr("?", bun.Ident(model.TranslationTable()))
	for _, column := range rowColumns(model) {
		q = q.ColumnExpr("?", bun.Ident(column))
	}
	return q.Where("? = ?", bun.Ident(model.ForeignKey()), ownerID)
}

func rowColumns(model *registry.Model) []string {
	columns := []string{columnID, model.ForeignKey(), columnLocale}
	columns = append(columns, model.AttributeNames()...)
	return append(columns, columnCreatedAt, columnUpdatedAt)
}

func decodeRows(model *registry.Model, records []map[string]any) ([]*Row, error) {
	out := make([]*Row, 0, len(records))
	for _, record := range records {
		row, err := decodeRow(model, record)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func decodeRow(model *registry.Model, record map[string]any) (*Row, error) {
	id, err := decodeUUID(record[columnID])
	if err != nil {
		return nil, fmt.Errorf("decode %s.id: %w", model.TranslationTable(), err)
	}
	ownerID, err := decodeUUID(record[model.ForeignKey()])
	if err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", model.TranslationTable(), model.ForeignKey(), err)
	}
	row := &Row{
		ID:        id,
		OwnerID:   ownerID,
		Locale:    decodeString(record[columnLocale]),
		Values:    make(map[string]any, len(model.AttributeNames())),
		CreatedAt: decodeTime(record[columnCreatedAt]),
		UpdatedAt: decodeTime(record[columnUpdatedAt]),
	}
	for _, attribute := range model.AttributeNames() {
		value := record[attribute]
		if raw, ok := value.([]byte); ok {
			value = string(raw)
		}
		row.Values[attribute] = value
	}
	return row, nil
}

func decodeUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case nil:
		return uuid.Nil, nil
	default:
		return uuid.Nil, fmt.Errorf("unsupported uuid value %T", value)
	}
}

func decodeString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func decodeTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
