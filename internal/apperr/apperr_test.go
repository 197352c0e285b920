package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("%s.Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestWrapKeepsIdentity(t *testing.T) {
	sentinel := New(KindConflict, "SESSION_ALREADY_ACTIVE", "already active")
	cause := errors.New("duplicate key")

	wrapped := fmt.Errorf("check in: %w", Wrap(sentinel, cause))

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("wrapped error should match sentinel")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped error should match cause")
	}
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("KindOf = %s", KindOf(wrapped))
	}
	other := New(KindConflict, "EMAIL_TAKEN", "taken")
	if errors.Is(wrapped, other) {
		t.Fatal("different codes must not match")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatal("plain errors are internal")
	}
	if _, ok := As(errors.New("boom")); ok {
		t.Fatal("As should fail for plain errors")
	}
}
