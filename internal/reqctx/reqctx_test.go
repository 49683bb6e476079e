package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithRequestContext_AssignsUUID(t *testing.T) {
	ctx := WithRequestContext(context.Background())
	rc := GetRequestContext(ctx)

	if _, err := uuid.Parse(rc.RequestID); err != nil {
		t.Fatalf("Expected a UUID request id, got %q", rc.RequestID)
	}

	again := GetRequestContext(WithRequestContext(ctx))
	if again.RequestID != rc.RequestID {
		t.Errorf("Expected existing id to be kept, got %s and %s", rc.RequestID, again.RequestID)
	}
}

func TestGetRequestContext_Unknown(t *testing.T) {
	if id := GetRequestContext(context.Background()).RequestID; id != "unknown" {
		t.Errorf("Expected unknown id, got %s", id)
	}
}

func TestNewRequestError(t *testing.T) {
	base := errors.New("boom")
	ctx := WithRequestContext(context.Background())
	err := NewRequestError(ctx, base)

	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to match base")
	}
	if !strings.Contains(err.Error(), GetRequestContext(ctx).RequestID) {
		t.Errorf("Expected request id in message, got %s", err.Error())
	}
}
