package claude

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode classifies a client failure.
type ErrorCode string

const (
	// CodeAuthentication indicates an expired or invalid credential, or an unresolvable organization.
	CodeAuthentication ErrorCode = "AUTHENTICATION"
	// CodeInvalidCredential indicates the credential is not a legal header value.
	CodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"
	// CodeNetwork indicates a transport failure or an unexpected service status.
	CodeNetwork ErrorCode = "NETWORK"
	// CodeNotFound indicates the conversation does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeValidation indicates the service rejected the input.
	CodeValidation ErrorCode = "VALIDATION"
	// CodeUpload indicates an attachment upload failure.
	CodeUpload ErrorCode = "UPLOAD"
	// CodeDecode indicates a malformed completion frame.
	CodeDecode ErrorCode = "DECODE"
	// CodeTimeout indicates the request exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"
	// CodeIO indicates a local file could not be read.
	CodeIO ErrorCode = "IO"
)

// Error is the single error type returned by Client operations.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	// Status is the HTTP status when the failure came from a service response.
	Status int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("claude: %s [%s]", e.Op, e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so the
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrAuthentication    = &Error{Code: CodeAuthentication}
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential}
	ErrNetwork           = &Error{Code: CodeNetwork}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrValidation        = &Error{Code: CodeValidation}
	ErrUpload            = &Error{Code: CodeUpload}
	ErrDecode            = &Error{Code: CodeDecode}
	ErrTimeout           = &Error{Code: CodeTimeout}
	ErrIO                = &Error{Code: CodeIO}
)

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: cause}
}

// transportError classifies a failure returned by http.Client.Do or a body read.
func transportError(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, op, "request exceeded deadline", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(CodeTimeout, op, "request exceeded deadline", err)
	}
	return newError(CodeNetwork, op, "request failed", err)
}

// statusError maps a non-2xx service response to an error code.
func statusError(op string, status int, body []byte) *Error {
	code := CodeNetwork
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeAuthentication
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		code = CodeValidation
	}
	return &Error{Code: code, Op: op, Message: serviceMessage(body), Status: status}
}
