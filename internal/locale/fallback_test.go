package locale

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"en":         "en",
		" EN ":       "en",
		"en_US":      "en-us",
		"pt-br":      "pt-br",
		"zh-hant-TW": "zh-hant-tw",
		"":           "",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
	if !Equal("EN_us", "en-US") {
		t.Fatal("expected en_us and en-US to compare equal")
	}
}

func TestResolveWithoutConfiguration(t *testing.T) {
	r := NewStaticFallbackResolver("en")

	if got := r.Resolve("fr"); !reflect.DeepEqual(got, []string{"fr", "en"}) {
		t.Fatalf("expected [fr en], got %v", got)
	}
	if got := r.Resolve("en"); !reflect.DeepEqual(got, []string{"en"}) {
		t.Fatalf("expected default to appear once, got %v", got)
	}
	if got := r.Resolve(""); !reflect.DeepEqual(got, []string{"en"}) {
		t.Fatalf("expected empty locale to resolve to default chain, got %v", got)
	}
}

func TestResolveConfiguredChainEndsWithDefault(t *testing.T) {
	r := NewStaticFallbackResolver("en", WithFallbacks(map[string][]string{
		"fr-CA": {"fr", "en", "fr", "de"},
	}))

	got := r.Resolve("fr_ca")
	want := []string{"fr-ca", "fr", "de", "en"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got[0] = "mutated"
	if r.Resolve("fr-ca")[0] != "fr-ca" {
		t.Fatal("expected Resolve to return a copy")
	}
}

func TestResolveSetReplacesEntry(t *testing.T) {
	r := NewStaticFallbackResolver("en")
	r.Set("fr", "de")
	r.Set("fr", "es")

	if got := r.Resolve("fr"); !reflect.DeepEqual(got, []string{"fr", "es", "en"}) {
		t.Fatalf("expected replaced chain, got %v", got)
	}
	if table := r.Table(); !reflect.DeepEqual(table["fr"], []string{"es"}) {
		t.Fatalf("expected table entry [es], got %v", table["fr"])
	}
}

func TestResolveParentFallbacks(t *testing.T) {
	r := NewStaticFallbackResolver("en", WithParentFallbacks(true))

	got := r.Resolve("de-AT")
	want := []string{"de-at", "de", "en"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContextLocales(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected no locale on empty context")
	}

	ctx = WithLocale(ctx, "FR")
	if code, _ := FromContext(ctx); code != "fr" {
		t.Fatalf("expected fr, got %q", code)
	}

	scoped := WithScopedLocale(ctx, "post", "de")
	if code, _ := ScopedFromContext(scoped, "post"); code != "de" {
		t.Fatalf("expected scoped de, got %q", code)
	}
	if _, ok := ScopedFromContext(scoped, "comment"); ok {
		t.Fatal("expected scope to be isolated per model")
	}
	if _, ok := ScopedFromContext(ctx, "post"); ok {
		t.Fatal("expected parent context to stay untouched")
	}
}

func TestScopedReturnsResultAndRestores(t *testing.T) {
	ctx := WithLocale(context.Background(), "en")

	got, err := Scoped(ctx, "fr", func(inner context.Context) (string, error) {
		code, _ := FromContext(inner)
		return code, nil
	})
	if err != nil {
		t.Fatalf("scoped: %v", err)
	}
	if got != "fr" {
		t.Fatalf("expected block result fr, got %q", got)
	}

	boom := errors.New("boom")
	if _, err := Scoped(ctx, "de", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected block error, got %v", err)
	}
	if code, _ := FromContext(ctx); code != "en" {
		t.Fatalf("expected outer locale en after scope, got %q", code)
	}
}
