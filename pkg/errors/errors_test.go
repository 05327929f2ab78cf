package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeInvalidConfig, "cluster %q has no patterns", "API"),
			want: `INVALID_CONFIG: cluster "API" has no patterns`,
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeNetwork, fmt.Errorf("connection refused"), "fetch %s", "https://example.com"),
			want: "NETWORK_ERROR: fetch https://example.com: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no such page")
	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() = true, want false for non-matching code")
	}
	if Is(fmt.Errorf("plain error"), ErrCodeFileNotFound) {
		t.Error("Is() = true, want false for plain error")
	}
}

func TestIsUnwrapsChain(t *testing.T) {
	inner := New(ErrCodeTimeout, "deadline exceeded")
	outer := fmt.Errorf("while fetching: %w", inner)

	if !Is(outer, ErrCodeTimeout) {
		t.Error("Is() did not find code through wrapped chain")
	}
	if GetCode(outer) != ErrCodeTimeout {
		t.Errorf("GetCode() = %q, want %q", GetCode(outer), ErrCodeTimeout)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "something broke")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() did not match wrapped cause")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidPattern, "bad glob")
	if got := UserMessage(err); got != "bad glob" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad glob")
	}
	plain := fmt.Errorf("plain")
	if got := UserMessage(plain); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}
