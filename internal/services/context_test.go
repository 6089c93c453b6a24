package services_test

import (
	"context"
	"testing"

	"borsch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "j1")
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "j1" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if sid, ok := services.SessionIDFromContext(ctx); !ok || sid != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", sid, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "")
	ctx = services.WithSessionID(ctx, "")
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected blank job id to be ignored")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected blank session id to be ignored")
	}
}
