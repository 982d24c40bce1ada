package logging

import (
	"context"
	"testing"
)

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_locale": "en", "model": "Post"})
	ctx = ContextWithFields(ctx, map[string]any{"request_locale": "fr"})

	fields := ContextFields(ctx)
	if fields["request_locale"] != "fr" || fields["model"] != "Post" {
		t.Fatalf("unexpected fields %v", fields)
	}

	fields["model"] = "mutated"
	if ContextFields(ctx)["model"] != "Post" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}

func TestContextFieldsEmpty(t *testing.T) {
	if fields := ContextFields(context.Background()); fields != nil {
		t.Fatalf("expected nil fields, got %v", fields)
	}
	ctx := context.Background()
	if got := ContextWithFields(ctx, nil); got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
}

func TestFromContextAppliesContextFields(t *testing.T) {
	recorder := &recordingLogger{}
	ctx := ContextWithFields(context.Background(), map[string]any{"request_locale": "de"})

	FromContext(ctx, recorder)
	if len(recorder.contexts) != 1 || recorder.contexts[0] != ctx {
		t.Fatalf("expected context to be bound, got %v", recorder.contexts)
	}
	if len(recorder.fields) != 1 || recorder.fields[0]["request_locale"] != "de" {
		t.Fatalf("expected context fields to reach the logger, got %v", recorder.fields)
	}

	FromContext(context.Background(), recorder)
	if len(recorder.fields) != 1 {
		t.Fatalf("did not expect fields without annotations, got %v", recorder.fields)
	}
}
