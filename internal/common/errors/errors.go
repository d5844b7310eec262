// Package errors provides the error taxonomy shared by the pipeline stages.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrCodeInvariantViolated  ErrorCode = "INVARIANT_VIOLATED"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrCodeAuthenticationFail ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeSessionCacheFailed ErrorCode = "SESSION_CACHE_FAILED"
	ErrCodeLedgerWriteFailed  ErrorCode = "LEDGER_WRITE_FAILED"
	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
}

// RequestError is raised for every non-success HTTP response from the job board.
// It is the only error kind that crosses the network boundary.
type RequestError struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func (e *RequestError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("RequestError[%d]: %s %s: %s", e.StatusCode, e.Method, e.URL, body)
}

// InvariantError marks a condition the board guarantees but did not hold, such as
// an empty resume list or a falsy bookmark flag. It is never retried.
type InvariantError struct {
	Invariant string `json:"invariant"`
	Details   string `json:"details,omitempty"`
}

func (e *InvariantError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("InvariantError: %s", e.Invariant)
	}
	return fmt.Sprintf("InvariantError: %s (%s)", e.Invariant, e.Details)
}

// ==========================
// 2. Error Constructors
// ==========================

func NewRequestError(method, url string, statusCode int, body string) *RequestError {
	return &RequestError{Method: method, URL: url, StatusCode: statusCode, Body: body}
}

func NewInvariantError(invariant, details string) *InvariantError {
	return &InvariantError{Invariant: invariant, Details: details}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError wraps a failed login.
func NewAuthenticationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFail,
		Message:   "Authentication failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionCacheError wraps a session cache read or write failure.
func NewSessionCacheError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionCacheFailed,
		Message:   fmt.Sprintf("Session cache %s failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteError wraps an application ledger insert failure.
func NewLedgerWriteError(listingID int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Application ledger write failed",
		Details:   fmt.Sprintf("listingId: %d, error: %s", listingID, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"listingId": listingID},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a notification delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRequestError reports whether err wraps a RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return stderrors.As(err, &reqErr)
}

// IsInvariantError reports whether err wraps an InvariantError.
func IsInvariantError(err error) bool {
	var invErr *InvariantError
	return stderrors.As(err, &invErr)
}

// CodeOf classifies any error into an ErrorCode.
func CodeOf(err error) ErrorCode {
	var (
		reqErr *RequestError
		invErr *InvariantError
		stdErr *StandardError
	)
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &reqErr):
		return ErrCodeRequestFailed
	case stderrors.As(err, &invErr):
		return ErrCodeInvariantViolated
	case stderrors.As(err, &stdErr):
		return stdErr.Code
	default:
		return "INTERNAL_ERROR"
	}
}

// ExitCode maps a run outcome to a process exit status: 0 on success, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REQUEST"):
		return "NETWORK"
	case strings.Contains(codeStr, "INVARIANT"):
		return "INVARIANT"
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "SESSION"):
		return "AUTH/SESSION"
	case strings.Contains(codeStr, "LEDGER"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
