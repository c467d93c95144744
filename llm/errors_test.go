package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"authentication", &AuthenticationError{}, false},
		{"access denied", &AccessDeniedError{}, false},
		{"not found", &NotFoundError{}, false},
		{"invalid request", &InvalidRequestError{}, false},
		{"context length", &ContextLengthError{}, false},
		{"configuration", &ConfigurationError{}, false},
		{"abort", &AbortError{}, false},
		{"rate limit", &RateLimitError{}, true},
		{"server", &ServerError{}, true},
		{"network", &NetworkError{}, true},
		{"timeout", &RequestTimeoutError{}, true},
		{"generic retryable provider", &ProviderError{Retryable: true}, true},
		{"generic non-retryable provider", &ProviderError{Retryable: false}, false},
		{"unknown error defaults retryable", errors.New("mystery"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%T) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ClientError{Message: "wrapped", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("ClientError should unwrap to its cause")
	}
	if err.Error() != "wrapped: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{
		ClientError: ClientError{Message: "too many requests"},
		Provider:    "openai",
		StatusCode:  429,
		Retryable:   true,
	}
	want := "[openai] too many requests (status=429, retryable=true)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConfigurationErrorIsDetectableWhenWrapped(t *testing.T) {
	inner := &ConfigurationError{ClientError: ClientError{Message: "OPENAI_API_KEY environment variable not set"}}
	wrapped := fmt.Errorf("startup: %w", inner)

	var configErr *ConfigurationError
	if !errors.As(wrapped, &configErr) {
		t.Error("ConfigurationError should be detectable through wrapping")
	}
}
