package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("quantity must be positive"), http.StatusBadRequest},
		{"not found", NotFound("material %d not found", 9), http.StatusNotFound},
		{"conflict", Conflict("invoice %s already exists", "SF20260101001"), http.StatusConflict},
		{"internal", Internal("failed to load movement", errors.New("pq: down")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Fatalf("StatusOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageOfHidesInternalCause(t *testing.T) {
	err := Internal("failed to insert line", errors.New("pq: connection refused"))
	if got := MessageOf(err); got != "internal server error" {
		t.Fatalf("MessageOf = %q, want generic message", got)
	}
}

func TestMessageOfKeepsCallerFaults(t *testing.T) {
	err := Validation("no valid lines in batch")
	if got := MessageOf(err); got != "no valid lines in batch" {
		t.Fatalf("MessageOf = %q, want the validation message", got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := Internal("failed to adjust stock", cause)
	if got := err.Error(); got != "failed to adjust stock: pq: deadlock detected" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the wrapped cause")
	}
}
