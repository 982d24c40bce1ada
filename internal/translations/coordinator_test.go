package translations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fixedCoordinator() *Coordinator {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewCoordinator(WithCoordinatorClock(func() time.Time { return now }))
}

func TestFlushInsertsNewRowsAndUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	model := newTestModel(t)
	store := NewMemoryStore()
	owner := uuid.New()
	seedRow(t, store, model, owner, "en", map[string]any{"subject": "old", "content": "kept"})

	cache := NewAttributeCache()
	cache.Write("en", "subject", "new")
	cache.Write("de", "subject", "neu")

	results, err := fixedCoordinator().Flush(ctx, store, model, owner, cache)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(results) != 2 || !results[0].Inserted || results[1].Inserted {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[1].Row == nil || results[1].Row.Value("content") != "kept" {
		t.Fatalf("expected the full stored row in the result, got %+v", results[1].Row)
	}

	en, err := store.Get(ctx, model, owner, "en")
	if err != nil {
		t.Fatalf("get en: %v", err)
	}
	if en.Value("subject") != "new" || en.Value("content") != "kept" {
		t.Fatalf("expected sibling attribute to survive update, got %v", en.Values)
	}
	de, err := store.Get(ctx, model, owner, "de")
	if err != nil {
		t.Fatalf("get de: %v", err)
	}
	if de.CreatedAt.IsZero() || de.UpdatedAt != de.CreatedAt {
		t.Fatalf("expected inserted row to be stamped, got %+v", de)
	}
	if !cache.Dirty() {
		t.Fatalf("flush must not clear dirty flags")
	}
}

func TestFlushSkipsEmptyNewRowWithoutRequiredAttributes(t *testing.T) {
	ctx := context.Background()
	model := newTestModel(t)
	store := NewMemoryStore()
	owner := uuid.New()

	cache := NewAttributeCache()
	cache.Write("fr", "subject", nil)

	results, err := fixedCoordinator().Flush(ctx, store, model, owner, cache)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(results) != 1 || results[0].Persisted || results[0].Row != nil {
		t.Fatalf("expected skipped row, got %+v", results)
	}
	if _, err := store.Get(ctx, model, owner, "fr"); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected no stored fr row, got %v", err)
	}
}

func TestFlushValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	model := newTestModel(t, requiredSubject())
	store := &countingStore{Store: NewMemoryStore()}
	owner := uuid.New()

	cache := NewAttributeCache()
	cache.Write("de", "subject", "gut")
	cache.Write("en", "content", "no subject")

	_, err := fixedCoordinator().Flush(ctx, store, model, owner, cache)
	if !errors.Is(err, ErrInvalidTranslation) {
		t.Fatalf("expected ErrInvalidTranslation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Locale != "en" {
		t.Fatalf("expected en validation error, got %#v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes after a validation failure, got %d", store.writes)
	}
}

func TestFlushRequiresSavedOwnerAndReportsStoreErrors(t *testing.T) {
	ctx := context.Background()
	model := newTestModel(t)
	cache := NewAttributeCache()
	cache.Write("en", "subject", "x")

	if _, err := fixedCoordinator().Flush(ctx, NewMemoryStore(), model, uuid.Nil, cache); err == nil {
		t.Fatalf("expected error for unsaved owner")
	}

	store := &countingStore{Store: NewMemoryStore(), failWrite: errBoom}
	if _, err := fixedCoordinator().Flush(ctx, store, model, uuid.New(), cache); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
