package provider

import (
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ConfigurationError means the call could never have succeeded as
// configured (missing key, unknown model). Not retryable.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s misconfigured: %s", e.Provider, e.Reason)
}

// AuthError means the remote rejected our credentials.
type AuthError struct {
	Provider string
	Cause    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %s rejected credentials: %v", e.Provider, e.Cause)
}
func (e *AuthError) Unwrap() error { return e.Cause }

// QuotaError means the remote is rate limiting or out of quota.
// Retryable after backing off.
type QuotaError struct {
	Provider string
	Cause    error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("provider %s quota exhausted: %v", e.Provider, e.Cause)
}
func (e *QuotaError) Unwrap() error { return e.Cause }

// TransportError covers network failures, timeouts and 5xx responses.
// Retryable.
type TransportError struct {
	Provider string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Cause)
}
func (e *TransportError) Unwrap() error { return e.Cause }

// Retryable reports whether err is worth trying again later.
func Retryable(err error) bool {
	var q *QuotaError
	var t *TransportError
	return errors.As(err, &q) || errors.As(err, &t)
}

// classifyOpenAIErr maps go-openai errors onto our error taxonomy using
// the HTTP status when one is available.
func classifyOpenAIErr(providerName string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return &AuthError{Provider: providerName, Cause: err}
		case 429:
			return &QuotaError{Provider: providerName, Cause: err}
		}
		if apiErr.HTTPStatusCode >= 500 {
			return &TransportError{Provider: providerName, Cause: err}
		}
		return &TransportError{Provider: providerName, Cause: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case 401, 403:
			return &AuthError{Provider: providerName, Cause: err}
		case 429:
			return &QuotaError{Provider: providerName, Cause: err}
		}
	}
	return &TransportError{Provider: providerName, Cause: err}
}

// classifyGeminiErr inspects the message text since the genai SDK does
// not expose a typed status on every path.
func classifyGeminiErr(providerName string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "permission"):
		return &AuthError{Provider: providerName, Cause: err}
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429"):
		return &QuotaError{Provider: providerName, Cause: err}
	default:
		return &TransportError{Provider: providerName, Cause: err}
	}
}
