package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeElementNotFound,
				Message: "No elements were found by locator 'css=#a'",
			},
			want: "[ELEMENT_NOT_FOUND] No elements were found by locator 'css=#a'",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeTimeout,
				Message: "lookup",
				Cause:   errors.New("deadline"),
			},
			want: "[TIMEOUT_ERROR] lookup: deadline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner error")
	err := ElementNotFound("outer", "css=#a", "A", "displayed", inner)

	if !errors.Is(err, inner) {
		t.Error("AppError.Unwrap() should allow errors.Is to find inner error")
	}
}

func TestAppError_IsMatchesSentinelByCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"not found", ElementNotFound("m", "l", "n", "s", nil), ErrElementNotFound, true},
		{"wrapped count", fmt.Errorf("finding: %w", ElementsCountMismatch("m", "l", "zero", 2, nil)), ErrElementsCount, true},
		{"timeout", Timeout("lookup", time.Second, nil), ErrTimeout, true},
		{"kind", UnknownElementKind("slider"), ErrUnknownElementKind, true},
		{"configuration", ConfigurationError("bad", nil), ErrConfiguration, true},
		{"different code", Timeout("lookup", time.Second, nil), ErrElementNotFound, false},
		{"plain error", errors.New("x"), ErrTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElementNotFound_Metadata(t *testing.T) {
	err := ElementNotFound("msg", "css=#login", "Login", "displayed", nil)

	if err.Metadata["locator"] != "css=#login" {
		t.Errorf("Metadata[locator] = %v, want css=#login", err.Metadata["locator"])
	}
	if err.Metadata["name"] != "Login" {
		t.Errorf("Metadata[name] = %v, want Login", err.Metadata["name"])
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestGetErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", ElementsCountMismatch("m", "l", "zero", 1, nil))
	if got := GetErrorCode(wrapped); got != ErrCodeElementsCount {
		t.Errorf("GetErrorCode() = %q, want %q", got, ErrCodeElementsCount)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}
