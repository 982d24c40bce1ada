package registry

import (
	"errors"
	"reflect"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type post struct{}
type comment struct{}

func postOwner() Owner {
	return Owner{
		Name:    "post",
		Table:   "posts",
		Alias:   "p",
		Columns: []string{"id", "blog_id"},
		Type:    reflect.TypeOf(post{}),
	}
}

func TestNewModelDefaults(t *testing.T) {
	model, err := NewModel(postOwner(), []string{"subject", "content", "subject", " "})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	if got := model.TranslationTable(); got != "post_translations" {
		t.Fatalf("expected post_translations, got %q", got)
	}
	if got := model.ForeignKey(); got != "post_id" {
		t.Fatalf("expected post_id, got %q", got)
	}
	if got := model.AttributeNames(); !reflect.DeepEqual(got, []string{"subject", "content"}) {
		t.Fatalf("unexpected attributes %v", got)
	}
	if model.PrimaryKey() != "id" || model.Alias() != "p" {
		t.Fatalf("unexpected owner metadata %q/%q", model.PrimaryKey(), model.Alias())
	}
	if !model.HasColumn("blog_id") || model.HasColumn("title") {
		t.Fatal("expected column lookup to follow declared columns")
	}
}

func TestNewModelOptions(t *testing.T) {
	model, err := NewModel(postOwner(), []string{"subject", "content"},
		WithTableName("ultra_translations"),
		WithForeignKey("owner_id"),
		WithFieldType("content", FieldText),
		WithRules("subject", validation.Required, validation.Length(1, 80)),
		WithRules("content", validation.NilOrNotEmpty),
		WithDefaultLocale("DE"),
	)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if model.TranslationTable() != "ultra_translations" || model.ForeignKey() != "owner_id" {
		t.Fatalf("expected overrides, got %q/%q", model.TranslationTable(), model.ForeignKey())
	}
	attr, _ := model.Attribute("content")
	if attr.Type != FieldText {
		t.Fatalf("expected text field type, got %q", attr.Type)
	}
	if got := model.RequiredAttributes(); !reflect.DeepEqual(got, []string{"subject"}) {
		t.Fatalf("expected required [subject], got %v", got)
	}
	if model.Locale() != "de" {
		t.Fatalf("expected model locale de, got %q", model.Locale())
	}
}

func TestNewModelRejectsInvalidDeclarations(t *testing.T) {
	if _, err := NewModel(postOwner(), nil); !errors.Is(err, ErrNoAttributes) {
		t.Fatalf("expected ErrNoAttributes, got %v", err)
	}
	if _, err := NewModel(Owner{Name: "post"}, []string{"subject"}); !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestModelValidate(t *testing.T) {
	model, err := NewModel(postOwner(), []string{"subject", "content"},
		WithRules("subject", validation.Required),
	)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	if err := model.Validate(map[string]any{"subject": "Hello"}); err != nil {
		t.Fatalf("expected valid values, got %v", err)
	}

	err = model.Validate(map[string]any{"content": "body only"})
	var errs validation.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	if _, ok := errs["subject"]; !ok {
		t.Fatalf("expected subject error, got %v", errs)
	}
}

func TestCheckAttribute(t *testing.T) {
	model, err := NewModel(postOwner(), []string{"subject"})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	err = model.CheckAttribute("title")
	var unknown *UnknownAttributeError
	if !errors.As(err, &unknown) || unknown.Attribute != "title" {
		t.Fatalf("expected UnknownAttributeError for title, got %v", err)
	}
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Fatal("expected error to unwrap to ErrUnknownAttribute")
	}
}

func TestRegistryTranslatesIsIdempotent(t *testing.T) {
	reg := New()

	first, created, err := reg.Translates(postOwner(), []string{"subject", "content"})
	if err != nil || !created {
		t.Fatalf("expected first declaration to be created, err=%v created=%v", err, created)
	}

	second, created, err := reg.Translates(postOwner(), []string{"title"})
	if err != nil {
		t.Fatalf("second declaration: %v", err)
	}
	if created || second != first {
		t.Fatal("expected repeated declaration to return the existing model")
	}
	if second.IsTranslated("title") {
		t.Fatal("expected repeated declaration attributes to be ignored")
	}

	if !reg.Translatable(reflect.TypeOf(post{})) {
		t.Fatal("expected post to be translatable")
	}
	if _, err := reg.Lookup(reflect.TypeOf(comment{})); !errors.Is(err, ErrModelNotTranslatable) {
		t.Fatalf("expected ErrModelNotTranslatable, got %v", err)
	}
	if model, err := reg.LookupName("post"); err != nil || model != first {
		t.Fatalf("expected name lookup to find post, got %v", err)
	}
	if got := reg.Models(); len(got) != 1 {
		t.Fatalf("expected one model, got %d", len(got))
	}
}

func TestRegistryRejectsNameUsedByAnotherType(t *testing.T) {
	reg := New()
	if _, _, err := reg.Translates(postOwner(), []string{"subject"}); err != nil {
		t.Fatalf("first declaration: %v", err)
	}

	type otherPost struct{}
	owner := postOwner()
	owner.Type = reflect.TypeOf(otherPost{})
	_, created, err := reg.Translates(owner, []string{"subject"})
	if !errors.Is(err, ErrDuplicateModel) || created {
		t.Fatalf("expected ErrDuplicateModel, got err=%v created=%v", err, created)
	}
	var dup *DuplicateModelError
	if !errors.As(err, &dup) || dup.Existing != reflect.TypeOf(post{}) || dup.Name != "post" {
		t.Fatalf("unexpected error detail %#v", err)
	}
	if model, err := reg.LookupName("post"); err != nil || model.Type() != reflect.TypeOf(post{}) {
		t.Fatalf("expected the first declaration to stay registered, got %v %v", model, err)
	}
	if reg.Translatable(owner.Type) {
		t.Fatal("expected the rejected type to stay undeclared")
	}
}
