package translations

import (
	"reflect"
	"testing"
)

func TestAttributeCacheWriteStagesAndLoadKeepsStaged(t *testing.T) {
	cache := NewAttributeCache()
	cache.Write("en", "subject", "draft")

	cache.Load("en", &Row{Locale: "en", Values: map[string]any{"subject": "stored", "content": "body"}})

	if got, _ := cache.Read("en", "subject"); got != "draft" {
		t.Fatalf("expected staged value to survive load, got %v", got)
	}
	if got, _ := cache.Read("en", "content"); got != "body" {
		t.Fatalf("expected clean value to load, got %v", got)
	}
	if !reflect.DeepEqual(cache.Staged("en"), map[string]any{"subject": "draft"}) {
		t.Fatalf("unexpected staged values %v", cache.Staged("en"))
	}
}

func TestAttributeCacheRowState(t *testing.T) {
	cache := NewAttributeCache()
	if _, known := cache.RowState("en"); known {
		t.Fatalf("expected unknown row state")
	}
	cache.Load("en", nil)
	if present, known := cache.RowState("en"); present || !known {
		t.Fatalf("expected known absent row, got present=%v known=%v", present, known)
	}
	cache.MarkFlushed("en", true)
	if present, _ := cache.RowState("en"); !present {
		t.Fatalf("expected persisted flush to mark the row present")
	}
}

func TestAttributeCacheDirtyTracking(t *testing.T) {
	cache := NewAttributeCache()
	if cache.Dirty() {
		t.Fatalf("new cache should be clean")
	}
	cache.Write("fr", "subject", "b")
	cache.Write("en", "subject", "a")
	if got := cache.DirtyLocales(); !reflect.DeepEqual(got, []string{"en", "fr"}) {
		t.Fatalf("unexpected dirty locales %v", got)
	}

	cache.MarkFlushed("en", true)
	if got := cache.DirtyLocales(); !reflect.DeepEqual(got, []string{"fr"}) {
		t.Fatalf("unexpected dirty locales after flush %v", got)
	}
	if got, _ := cache.Read("en", "subject"); got != "a" {
		t.Fatalf("flushed value should stay cached, got %v", got)
	}

	cache.Reset()
	if cache.Dirty() {
		t.Fatalf("reset should discard staged writes")
	}
	if _, ok := cache.Read("en", "subject"); ok {
		t.Fatalf("reset should discard cached values")
	}
}

func TestAttributeCacheSkippedFlushForgetsLocale(t *testing.T) {
	cache := NewAttributeCache()
	cache.Load("en", &Row{Locale: "en", Values: map[string]any{"subject": "Hello"}})
	cache.Write("fr", "subject", nil)

	cache.MarkFlushed("fr", false)

	if _, ok := cache.Read("fr", "subject"); ok {
		t.Fatalf("expected staged nil to be dropped when no row was written")
	}
	if present, known := cache.RowState("fr"); present || !known {
		t.Fatalf("expected fr to be recorded as absent, got present=%v known=%v", present, known)
	}
	if got, _ := cache.Read("en", "subject"); got != "Hello" {
		t.Fatalf("expected other locales to stay cached, got %v", got)
	}
}
