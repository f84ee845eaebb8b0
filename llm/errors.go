// Provider error translation.
//
// Raw wire errors are not actionable for an end user: a bare 401 body tells
// them nothing. Failures are categorized by HTTP status and rewritten into
// messages the presentation layer can show directly.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// ErrorCategory classifies a provider failure.
type ErrorCategory int

const (
	// CategoryUnknown covers failures with no specific handling.
	CategoryUnknown ErrorCategory = iota
	// CategoryInvalidCredentials means the API key was rejected (401).
	CategoryInvalidCredentials
	// CategoryInsufficientQuota means the account is out of credits (402).
	CategoryInsufficientQuota
	// CategoryRateLimited means the provider is throttling requests (429).
	CategoryRateLimited
	// CategoryUnavailable means the service is temporarily down (503).
	CategoryUnavailable
	// CategoryNetwork covers connection and timeout failures.
	CategoryNetwork
)

// APIError is a categorized provider failure with a user-presentable message.
type APIError struct {
	StatusCode int
	Category   ErrorCategory
	Message    string
}

// Error returns the user-presentable message.
func (e *APIError) Error() string {
	return e.Message
}

// errorBody is the structured error payload of OpenAI-compatible APIs.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}

// apiErrorFromStatus maps an HTTP failure to an APIError. For statuses
// without a dedicated category the structured error body message is used when
// parseable, otherwise a generic message.
func apiErrorFromStatus(status int, body []byte) *APIError {
	switch status {
	case 401:
		return &APIError{
			StatusCode: status,
			Category:   CategoryInvalidCredentials,
			Message:    "Invalid API key. Check the key configured in Settings.",
		}
	case 402:
		return &APIError{
			StatusCode: status,
			Category:   CategoryInsufficientQuota,
			Message:    "Insufficient credits. Add funds to your provider account.",
		}
	case 429:
		return &APIError{
			StatusCode: status,
			Category:   CategoryRateLimited,
			Message:    "Rate limited by the provider. Wait a moment and try again.",
		}
	case 503:
		return &APIError{
			StatusCode: status,
			Category:   CategoryUnavailable,
			Message:    "The model service is temporarily unavailable. Try again shortly.",
		}
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &APIError{
			StatusCode: status,
			Category:   CategoryUnknown,
			Message:    parsed.Error.Message,
		}
	}

	return &APIError{
		StatusCode: status,
		Category:   CategoryUnknown,
		Message:    fmt.Sprintf("Request failed with status %d.", status),
	}
}

// networkError wraps a transport-level failure. Cancellation is passed
// through untouched so callers can distinguish "cancelled" from "failed".
func networkError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{
			Category: CategoryNetwork,
			Message:  "The request timed out. Check your connection and try again.",
		}
	}

	return &APIError{
		Category: CategoryNetwork,
		Message:  fmt.Sprintf("Network error: %v", err),
	}
}
