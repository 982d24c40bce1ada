package translations

import (
	"context"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/registry"
)

func newTestModel(t *testing.T, opts ...registry.Option) *registry.Model {
	t.Helper()
	model, err := registry.NewModel(registry.Owner{Name: "Post", Table: "posts"}, []string{"subject", "content"}, opts...)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return model
}

func requiredSubject() registry.Option {
	return registry.WithRules("subject", validation.Required)
}

func seedRow(t *testing.T, store Store, model *registry.Model, ownerID uuid.UUID, code string, values map[string]any) {
	t.Helper()
	row := NewRow(uuid.New(), ownerID, code)
	for k, v := range values {
		row.Values[k] = v
	}
	if err := store.Insert(context.Background(), model, row); err != nil {
		t.Fatalf("seed %s row: %v", code, err)
	}
}

// countingStore records reads and can fail writes.
type countingStore struct {
	Store
	lists     [][]string
	failWrite error
	writes    int
}

func (s *countingStore) ListByLocales(ctx context.Context, model *registry.Model, ownerID uuid.UUID, locales []string) ([]*Row, error) {
	s.lists = append(s.lists, append([]string(nil), locales...))
	return s.Store.ListByLocales(ctx, model, ownerID, locales)
}

func (s *countingStore) Insert(ctx context.Context, model *registry.Model, row *Row) error {
	s.writes++
	if s.failWrite != nil {
		return s.failWrite
	}
	return s.Store.Insert(ctx, model, row)
}

func (s *countingStore) Update(ctx context.Context, model *registry.Model, row *Row) error {
	s.writes++
	if s.failWrite != nil {
		return s.failWrite
	}
	return s.Store.Update(ctx, model, row)
}

var errBoom = errors.New("boom")
