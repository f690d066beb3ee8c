package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	t.Run("wrap keeps the cause", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := NewStorage("insert failed", cause)

		if !stderrors.Is(err, cause) {
			t.Error("wrapped cause should survive errors.Is")
		}
		if !IsStorage(err) {
			t.Error("expected a storage error")
		}
	})

	t.Run("validation formats its message", func(t *testing.T) {
		err := NewValidation("depth %d out of range", -1)
		if !IsValidation(err) {
			t.Error("expected a validation error")
		}
		if err.Message != "depth -1 out of range" {
			t.Errorf("message = %q", err.Message)
		}
	})

	t.Run("code of wrapped error resolves through fmt", func(t *testing.T) {
		inner := New(Timeout, "query deadline exceeded")
		outer := fmt.Errorf("while searching: %w", inner)
		if CodeOf(outer) != Timeout {
			t.Errorf("code = %s, want TIMEOUT", CodeOf(outer))
		}
		if !IsTimeout(outer) {
			t.Error("expected a timeout through the wrap chain")
		}
	})

	t.Run("foreign errors map to internal", func(t *testing.T) {
		if CodeOf(stderrors.New("plain")) != InternalError {
			t.Error("non-NavError should map to INTERNAL_ERROR")
		}
	})

	t.Run("details ride along", func(t *testing.T) {
		err := New(ValidationFailed, "bad mode").WithDetails(map[string]string{"mode": "turbo"})
		if err.Details == nil {
			t.Error("details lost")
		}
	})
}
