package application

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "forbidden", err: ErrForbidden, want: "forbidden"},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "conflict", err: ErrConflict, want: "conflict"},
		{name: "invalid credentials", err: ErrInvalidCredentials, want: "invalid_credentials"},
		{name: "token expired", err: ErrTokenExpired, want: "token_expired"},
		{name: "account disabled", err: ErrAccountDisabled, want: "account_disabled"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"field": "bad"}}, want: "validation"},
		{name: "unexpected", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, got)
			}
		})
	}
}
