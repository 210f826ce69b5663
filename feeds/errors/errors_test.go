package errors_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedErrors "github.com/qolzam/telar/apps/feeds/feeds/errors"
)

func TestFeedError_Error(t *testing.T) {
	err := feedErrors.NewFeedError("TEST_CODE", "Test message", nil)
	assert.Equal(t, "TEST_CODE: Test message", err.Error())

	cause := errors.New("database connection failed")
	errWithCause := feedErrors.NewFeedError("DB_ERROR", "Database error", cause)
	assert.Contains(t, errWithCause.Error(), "DB_ERROR: Database error")
	assert.Contains(t, errWithCause.Error(), "database connection failed")
}

func TestNewPersistenceError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := feedErrors.NewPersistenceError("createFeed", cause)

	assert.Equal(t, "createFeed", err.Action)
	assert.ErrorIs(t, err, feedErrors.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Equal(t, feedErrors.CodePersistenceError, feedErrors.Kind(err))
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{feedErrors.ErrFeedNotFound, feedErrors.CodeFeedNotFound},
		{fmt.Errorf("lookup: %w", feedErrors.ErrFeedNotFound), feedErrors.CodeFeedNotFound},
		{feedErrors.ErrImageNotFound, feedErrors.CodeImageNotFound},
		{feedErrors.ErrPermissionDenied, feedErrors.CodePermissionDenied},
		{feedErrors.ErrLastImage, feedErrors.CodeInvariantViolation},
		{feedErrors.ErrAlreadyLiked, feedErrors.CodeAlreadyLiked},
		{feedErrors.ErrNotLiked, feedErrors.CodeNotLiked},
		{feedErrors.ErrPersistence, feedErrors.CodePersistenceError},
		{errors.New("boom"), feedErrors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, feedErrors.Kind(tt.err))
		})
	}

	assert.Equal(t, "", feedErrors.Kind(nil))
}

func TestLastImageIsInvariantViolation(t *testing.T) {
	assert.ErrorIs(t, feedErrors.ErrLastImage, feedErrors.ErrInvariantViolation)
	assert.True(t, feedErrors.IsBusiness(feedErrors.ErrLastImage))
	assert.False(t, feedErrors.IsBusiness(feedErrors.ErrPersistence))
	assert.False(t, feedErrors.IsBusiness(errors.New("boom")))
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", feedErrors.ErrFeedNotFound, http.StatusNotFound, feedErrors.CodeFeedNotFound},
		{"image not found", feedErrors.ErrImageNotFound, http.StatusNotFound, feedErrors.CodeImageNotFound},
		{"permission", feedErrors.ErrPermissionDenied, http.StatusForbidden, feedErrors.CodePermissionDenied},
		{"last image", feedErrors.ErrLastImage, http.StatusConflict, feedErrors.CodeInvariantViolation},
		{"already liked", feedErrors.ErrAlreadyLiked, http.StatusConflict, feedErrors.CodeAlreadyLiked},
		{"not liked", feedErrors.ErrNotLiked, http.StatusConflict, feedErrors.CodeNotLiked},
		{"persistence", feedErrors.NewPersistenceError("getAllFeeds", errors.New("timeout")), http.StatusServiceUnavailable, feedErrors.CodePersistenceError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, feedErrors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return feedErrors.HandleServiceError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var payload feedErrors.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, tt.code, payload.Code)
			assert.Equal(t, tt.err.Error(), payload.Details)
		})
	}
}
