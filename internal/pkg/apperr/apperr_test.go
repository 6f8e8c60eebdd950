package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOfSeesThroughWrapping(t *testing.T) {
	base := StoreFailure("record swipe decision", context.DeadlineExceeded)
	wrapped := fmt.Errorf("swipe: %w", base)

	if got := KindOf(wrapped); got != KindStoreFailure {
		t.Fatalf("unexpected kind: got %s want %s", got, KindStoreFailure)
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Fatalf("cause must stay reachable through errors.Is")
	}
	if Message(wrapped) != "record swipe decision" {
		t.Fatalf("unexpected message: %q", Message(wrapped))
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Fatalf("unexpected kind for plain error: %s", got)
	}
	if got := KindOf(nil); got != "" {
		t.Fatalf("unexpected kind for nil: %s", got)
	}
	if Is(nil, KindNotFound) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestErrorString(t *testing.T) {
	err := InvalidArgument("actor and target must differ")
	if err.Error() != "actor and target must differ" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}

	err = StoreFailure("append message", errors.New("conn reset"))
	if err.Error() != "append message: conn reset" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}

func TestStoreKeepsExistingKind(t *testing.T) {
	notFound := NotFound("match not found")
	if got := Store("append message", notFound); got != notFound {
		t.Fatalf("expected classified error to pass through, got %v", got)
	}

	got := Store("append message", errors.New("conn reset"))
	if !Is(got, KindStoreFailure) {
		t.Fatalf("expected store failure, got %v", got)
	}
	if Store("noop", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
