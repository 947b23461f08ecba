package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestForgeError_Error(t *testing.T) {
	err := &ForgeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "project not found",
	}

	expected := "NOT_FOUND: project not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("project 1: name is required")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "project 1: name is required" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewValidationWithDetails(t *testing.T) {
	err := NewValidationWithDetails("bad json", map[string]any{"offset": 12})

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Details["offset"] != 12 {
		t.Errorf("Details[offset] = %v, want 12", err.Details["offset"])
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("project_id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	err := NewUnknownStrategy("CREATE", []string{"create", "optimize", "predict"})

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	for _, name := range []string{"create", "optimize", "predict"} {
		if !strings.Contains(err.Message, name) {
			t.Errorf("Message %q does not list %q", err.Message, name)
		}
	}
	if err.Details["strategy"] != "CREATE" {
		t.Errorf("Details[strategy] = %v, want CREATE", err.Details["strategy"])
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01ABC")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01ABC" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01ABC")
	}
}

func TestNewEmptyResponse(t *testing.T) {
	err := NewEmptyResponse("predict")

	if err.Code != ErrEmptyResponse {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptyResponse)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["strategy"] != "predict" {
		t.Errorf("Details[strategy] = %v, want predict", err.Details["strategy"])
	}
}

func TestNewGenerationFailed(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewGenerationFailed(cause)

	if err.Code != ErrGenerationFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrGenerationFailed)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("database connection failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
		if !stderrors.Is(err, originalErr) {
			t.Error("errors.Is(err, originalErr) = false, want true")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrValidation) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-ForgeError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-ForgeError")
		}
	})

	t.Run("wrapped ForgeError", func(t *testing.T) {
		inner := NewEmptyResponse("create")
		wrapped := fmt.Errorf("strategy: %w", inner)
		if !Is(wrapped, ErrEmptyResponse) {
			t.Error("Is() = false, want true for wrapped ForgeError")
		}
		if _, ok := As(wrapped); !ok {
			t.Error("As() = false, want true for wrapped ForgeError")
		}
	})
}
