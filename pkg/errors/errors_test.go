package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeValidation, "invalid input")
	expected := "[E1001] invalid input"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	wrapped := Wrap(ErrCodeRemoteUnavailable, "poll failed", errors.New("connection refused"))
	expected = "[E2001] poll failed: connection refused"
	if wrapped.Error() != expected {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), expected)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Wrap(ErrCodeInternal, "outer", inner)

	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeScheduleInvalid, http.StatusBadRequest},
		{ErrCodeRosterEmpty, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeTaskNotFound, http.StatusNotFound},
		{ErrCodeScheduleNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeRemoteUnavailable, http.StatusBadGateway},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeDBQuery, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := New(tt.code, "test")
		if got := err.HTTPStatus(); got != tt.status {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.status)
		}
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(ErrRemoteUnavailable("poll failed", nil)) {
		t.Error("remote unavailable errors should be transient")
	}
	if IsTransient(ErrValidation("bad input")) {
		t.Error("validation errors should not be transient")
	}
	if IsTransient(errors.New("plain error")) {
		t.Error("plain errors should not be transient")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := New(ErrCodeNotFound, "missing")
	got, ok := AsAppError(appErr)
	if !ok || got.Code != ErrCodeNotFound {
		t.Error("AsAppError should recover the AppError")
	}

	_, ok = AsAppError(errors.New("plain"))
	if ok {
		t.Error("AsAppError should reject plain errors")
	}
}
