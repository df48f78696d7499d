package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal server error")
	ErrUnauthorized = errors.New("unauthorized")

	// Matching engine failures.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrDimensionMismatch    = errors.New("dimension mismatch")
	ErrSelfMatch            = errors.New("self match")
	ErrDuplicatePending     = errors.New("duplicate pending")
	ErrAlreadyFinalized     = errors.New("already finalized")
	ErrNotAuthorized        = errors.New("not authorized")
)

// Stable codes exposed to clients. Never derive them from messages.
const (
	CodeNotFound             = "NOT_FOUND"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeEmbeddingUnavailable = "EMBEDDING_UNAVAILABLE"
	CodeDimensionMismatch    = "DIMENSION_MISMATCH"
	CodeSelfMatch            = "SELF_MATCH"
	CodeDuplicatePending     = "DUPLICATE_PENDING"
	CodeAlreadyFinalized     = "ALREADY_FINALIZED"
	CodeNotAuthorized        = "NOT_AUTHORIZED"
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

func NewEmbeddingUnavailable(details string, err error) *AppError {
	return NewAppError(ErrEmbeddingUnavailable, "Embedding provider unavailable", details, err)
}

func NewDimensionMismatch(want, got int) *AppError {
	details := fmt.Sprintf("expected %d dimensions, got %d", want, got)
	return NewAppError(ErrDimensionMismatch, "Vector dimension mismatch", details, nil)
}

func NewSelfMatch(userID string) *AppError {
	return NewAppError(ErrSelfMatch, "Cannot request a match with yourself", fmt.Sprintf("user '%s'", userID), nil)
}

func NewDuplicatePending(requesterID, targetID string) *AppError {
	details := fmt.Sprintf("a pending request from '%s' to '%s' already exists", requesterID, targetID)
	return NewAppError(ErrDuplicatePending, "Match request already pending", details, nil)
}

func NewAlreadyFinalized(matchID, status string) *AppError {
	details := fmt.Sprintf("match '%s' is already %s", matchID, status)
	return NewAppError(ErrAlreadyFinalized, "Match already finalized", details, nil)
}

func NewNotAuthorized(details string) *AppError {
	return NewAppError(ErrNotAuthorized, "Not authorized for this action", details, nil)
}

var codes = []struct {
	base error
	code string
}{
	{ErrEmbeddingUnavailable, CodeEmbeddingUnavailable},
	{ErrDimensionMismatch, CodeDimensionMismatch},
	{ErrSelfMatch, CodeSelfMatch},
	{ErrDuplicatePending, CodeDuplicatePending},
	{ErrAlreadyFinalized, CodeAlreadyFinalized},
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrNotFound, CodeNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrPermission, CodePermissionDenied},
	{ErrConflict, CodeConflict},
}

// Code returns the stable code for err, INTERNAL when err is unclassified.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.base) {
			return c.code
		}
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch Code(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeSelfMatch:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePermissionDenied, CodeNotAuthorized:
		return http.StatusForbidden
	case CodeConflict, CodeDuplicatePending, CodeAlreadyFinalized:
		return http.StatusConflict
	case CodeEmbeddingUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.BaseError.Error(),
		"code":    Code(e),
		"message": e.Message,
	}
}
