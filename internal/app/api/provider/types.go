package provider

import (
	"fmt"
	"net/http"
)

// TranscriptionError represents engine-specific failures
type TranscriptionError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	Retryable bool   `json:"retryable"`
	Cause     error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// ErrorFromStatus classifies a non-2xx HTTP response from a remote engine.
func ErrorFromStatus(providerName string, status int, body string) *TranscriptionError {
	e := &TranscriptionError{
		Provider: providerName,
		Message:  fmt.Sprintf("HTTP %d: %s", status, body),
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = "auth_error"
	case status == http.StatusTooManyRequests:
		e.Code = "rate_limit"
		e.Retryable = true
	case status == http.StatusRequestEntityTooLarge:
		e.Code = "file_too_large"
	case status >= 500:
		e.Code = "server_error"
		e.Retryable = true
	default:
		e.Code = "request_error"
	}
	return e
}
