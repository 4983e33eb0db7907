package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"sheetimport/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    codeOf(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the domain error err wraps, otherwise the
// code of the nearest AppError
func GetCode(err error) string {
	return codeOf(err)
}

// codeOf gives domain sentinels precedence over AppError codes found deeper
// in the chain
func codeOf(err error) string {
	if code := codeForDomain(err); code != CodeInternalError {
		return code
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeUnreadableSource  = "UNREADABLE_SOURCE"
	CodeNotFound          = "NOT_FOUND"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeNotPublic         = "NOT_PUBLIC"
	CodeFetchTimeout      = "FETCH_TIMEOUT"
	CodeFetchCancelled    = "FETCH_CANCELLED"
	CodeFetchFailed       = "FETCH_FAILED"
	CodeTabNotFound       = "TAB_NOT_FOUND"
	CodeTitleNotMapped    = "TITLE_NOT_MAPPED"
	CodeNoValidRows       = "NO_VALID_ROWS"
	CodeCommitItemFailed  = "COMMIT_ITEM_FAILED"
	CodeInvalidTransition = "INVALID_STATE"
)

var domainCodes = []struct {
	target error
	code   string
}{
	{core.ErrCommitItemFailed, CodeCommitItemFailed},
	{core.ErrUnreadableSource, CodeUnreadableSource},
	{core.ErrNotFound, CodeNotFound},
	{core.ErrAccessDenied, CodeAccessDenied},
	{core.ErrNotPublic, CodeNotPublic},
	{core.ErrFetchTimeout, CodeFetchTimeout},
	{core.ErrFetchCancelled, CodeFetchCancelled},
	{core.ErrFetchFailed, CodeFetchFailed},
	{core.ErrTabNotFound, CodeTabNotFound},
	{core.ErrInvalidColumn, CodeInvalidInput},
	{core.ErrTitleNotMapped, CodeTitleNotMapped},
	{core.ErrNoValidRows, CodeNoValidRows},
	{core.ErrInvalidTransition, CodeInvalidTransition},
}

func codeForDomain(err error) string {
	for _, dc := range domainCodes {
		if stderrors.Is(err, dc.target) {
			return dc.code
		}
	}
	return CodeInternalError
}

// FromDomain converts any error into an AppError carrying the code of the
// domain error it wraps. A commit failing on a database error still reports
// COMMIT_ITEM_FAILED.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	if code := codeForDomain(err); code != CodeInternalError {
		return &AppError{Code: code, Message: err.Error()}
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeInternalError, Message: err.Error()}
}

// HTTPStatus maps an error code to the response status the API returns
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidInput, CodeUnreadableSource, CodeTabNotFound:
		return http.StatusBadRequest
	case CodeSessionNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeAccessDenied, CodeNotPublic:
		return http.StatusForbidden
	case CodeFetchTimeout:
		return http.StatusGatewayTimeout
	case CodeFetchCancelled:
		return 499
	case CodeTitleNotMapped, CodeNoValidRows:
		return http.StatusUnprocessableEntity
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeCommitItemFailed, CodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func SessionNotFound(id string) *AppError {
	return New(CodeSessionNotFound, fmt.Sprintf("import session %s not found", id))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
