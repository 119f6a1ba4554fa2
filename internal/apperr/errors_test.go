package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_FollowsWrapChain(t *testing.T) {
	sentinel := New(KindConflict, "email already registered")
	wrapped := fmt.Errorf("register %q: %w", "a@b.c", sentinel)

	if got := KindOf(wrapped); got != KindConflict {
		t.Fatalf("KindOf = %v, want %v", got, KindConflict)
	}
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("errors.Is should match the sentinel through wrapping")
	}
	if Message(wrapped) != "email already registered" {
		t.Fatalf("Message = %q", Message(wrapped))
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Fatalf("KindOf = %v, want unknown", got)
	}
	if Message(errors.New("boom")) != "" {
		t.Fatalf("unclassified errors must not leak a message")
	}
	if KindOf(nil) != KindUnknown {
		t.Fatalf("nil error must be unknown")
	}
}

func TestUnavailable_KeepsCause(t *testing.T) {
	err := Unavailable("select user", context.DeadlineExceeded)
	if !IsUnavailable(err) {
		t.Fatalf("expected unavailable kind")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("cause must be reachable with errors.Is")
	}
	if err.Error() != "select user: context deadline exceeded" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		kind Kind
		pred func(error) bool
	}{
		{KindValidation, IsValidation},
		{KindNotFound, IsNotFound},
		{KindAuth, IsAuth},
		{KindConflict, IsConflict},
		{KindUnavailable, IsUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if !tc.pred(New(tc.kind, "x")) {
				t.Fatalf("predicate did not match its own kind")
			}
			if tc.pred(errors.New("x")) {
				t.Fatalf("predicate matched an unclassified error")
			}
		})
	}
}
