package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qolzam/telar/apps/feeds/internal/middleware/requestid"
)

// Feed service specific errors
var (
	ErrFeedNotFound       = errors.New("feed not found")
	ErrImageNotFound      = errors.New("feed image not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrLastImage          = fmt.Errorf("%w: cannot delete last image", ErrInvariantViolation)
	ErrAlreadyLiked       = errors.New("feed already liked")
	ErrNotLiked           = errors.New("feed not liked")

	// Database and system errors
	ErrPersistence = errors.New("persistence operation failed")

	// Request and validation errors
	ErrValidationFailed   = errors.New("validation failed")
	ErrMissingUserContext = errors.New("missing user context")
)

// Error codes
const (
	CodeFeedNotFound       = "FEED_NOT_FOUND"
	CodeImageNotFound      = "IMAGE_NOT_FOUND"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeAlreadyLiked       = "ALREADY_LIKED"
	CodeNotLiked           = "NOT_LIKED"
	CodePersistenceError   = "PERSISTENCE_ERROR"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeMissingUserContext = "MISSING_USER_CONTEXT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// FeedError represents a feed service error with the action that produced it
type FeedError struct {
	Code    string
	Message string
	Action  string
	Cause   error
}

func (e *FeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause, and for persistence failures ErrPersistence as well
func (e *FeedError) Unwrap() []error {
	if e.Code == CodePersistenceError {
		return []error{ErrPersistence, e.Cause}
	}
	return []error{e.Cause}
}

// NewFeedError creates a new FeedError
func NewFeedError(code, message string, cause error) *FeedError {
	return &FeedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewPersistenceError wraps an infrastructure failure of the given action
func NewPersistenceError(action string, cause error) *FeedError {
	err := NewFeedError(CodePersistenceError, fmt.Sprintf("%s failed", action), cause)
	err.Action = action
	return err
}

type kindEntry struct {
	sentinel error
	code     string
	status   int
	message  string
}

// kinds is matched in order; the first matching sentinel wins.
var kinds = []kindEntry{
	{ErrFeedNotFound, CodeFeedNotFound, http.StatusNotFound, "Feed not found"},
	{ErrImageNotFound, CodeImageNotFound, http.StatusNotFound, "Feed image not found"},
	{ErrPermissionDenied, CodePermissionDenied, http.StatusForbidden, "Permission denied"},
	{ErrLastImage, CodeInvariantViolation, http.StatusConflict, "Cannot delete the last image of a feed"},
	{ErrInvariantViolation, CodeInvariantViolation, http.StatusConflict, "Operation would break a feed invariant"},
	{ErrAlreadyLiked, CodeAlreadyLiked, http.StatusConflict, "Feed already liked"},
	{ErrNotLiked, CodeNotLiked, http.StatusConflict, "Feed not liked"},
	{ErrValidationFailed, CodeValidationFailed, http.StatusBadRequest, "Validation failed"},
	{ErrMissingUserContext, CodeMissingUserContext, http.StatusUnauthorized, "Missing user context"},
	{ErrPersistence, CodePersistenceError, http.StatusServiceUnavailable, "Persistence operation failed"},
}

func lookup(err error) (kindEntry, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k, true
		}
	}
	return kindEntry{}, false
}

// Kind returns the error code for err, or INTERNAL_ERROR for unknown errors
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if k, ok := lookup(err); ok {
		return k.code
	}
	return CodeInternalError
}

// IsBusiness reports whether err is a deterministic business-rule outcome
func IsBusiness(err error) bool {
	switch Kind(err) {
	case CodeFeedNotFound, CodeImageNotFound, CodePermissionDenied, CodeInvariantViolation,
		CodeAlreadyLiked, CodeNotLiked, CodeValidationFailed:
		return true
	}
	return false
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func respond(c *fiber.Ctx, status int, response ErrorResponse) error {
	response.RequestID = requestid.GetRequestID(c)
	return c.Status(status).JSON(response)
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if k, ok := lookup(err); ok {
		return respond(c, k.status, ErrorResponse{
			Code:    k.code,
			Message: k.message,
			Details: err.Error(),
		})
	}

	return respond(c, http.StatusInternalServerError, ErrorResponse{
		Code:    CodeInternalError,
		Message: "An unexpected error occurred",
		Details: err.Error(),
	})
}

// HandleValidationError handles validation errors with 400 Bad Request
func HandleValidationError(c *fiber.Ctx, message string, details ...string) error {
	response := ErrorResponse{
		Code:    CodeValidationFailed,
		Message: message,
		Details: message,
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return respond(c, http.StatusBadRequest, response)
}

// HandleUserContextError handles a request that reached a handler without a user
func HandleUserContextError(c *fiber.Ctx, message string) error {
	return respond(c, http.StatusUnauthorized, ErrorResponse{
		Code:    CodeMissingUserContext,
		Message: message,
		Details: message,
	})
}
