package errors

import (
	"fmt"
	"testing"
)

func TestOrbitError_Error(t *testing.T) {
	err := &OrbitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "contact not found: sarah",
	}

	expected := "NOT_FOUND: contact not found: sarah"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("name is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "name is required" {
		t.Errorf("Message = %q, want %q", err.Message, "name is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("contact", "sarah")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "contact not found: sarah" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["identifier"] != "sarah" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "sarah")
	}
	if err.Details["kind"] != "contact" {
		t.Errorf("Details[kind] = %v, want %q", err.Details["kind"], "contact")
	}
}

func TestNewNameAlreadyExists(t *testing.T) {
	err := NewNameAlreadyExists("constellation", "Family")

	if err.Code != ErrNameAlreadyExists {
		t.Errorf("Code = %q, want %q", err.Code, ErrNameAlreadyExists)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["name"] != "Family" {
		t.Errorf("Details[name] = %v, want %q", err.Details["name"], "Family")
	}
}

func TestNewConflict(t *testing.T) {
	err := NewConflict("contact is a member already")

	if err.Code != ErrConflict {
		t.Errorf("Code = %q, want %q", err.Code, ErrConflict)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewValueTooLarge(t *testing.T) {
	err := NewValueTooLarge("artifact value", 2000, 2500)

	if err.Code != ErrValueTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrValueTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_chars"] != 2000 {
		t.Errorf("Details[max_chars] = %v, want 2000", err.Details["max_chars"])
	}
	if err.Details["actual_chars"] != 2500 {
		t.Errorf("Details[actual_chars] = %v, want 2500", err.Details["actual_chars"])
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("database connection failed"))

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want generic message", err.Message)
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %v", err.Details["internal_error"])
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewNotFound("contact", "x"), ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewNotFound("contact", "x"), ErrConflict) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if Is(fmt.Errorf("plain"), ErrNotFound) {
			t.Error("Is() = true, want false for plain error")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("members[0]: %w", NewNotFound("contact", "x"))
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped OrbitError")
		}
	})
}

func TestAs(t *testing.T) {
	orig := NewConflict("x")
	if got := As(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Errorf("As() = %v, want original error", got)
	}
	if got := As(fmt.Errorf("boom")); got.Code != ErrInternal {
		t.Errorf("As(plain).Code = %q, want %q", got.Code, ErrInternal)
	}
}
