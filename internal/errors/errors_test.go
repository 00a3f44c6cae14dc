package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassifyError_DomainSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
	}{
		{"validation", fmt.Errorf("user id is empty: %w", ErrValidation), CategoryValidation},
		{"not found", fmt.Errorf("profile u-1: %w", ErrNotFound), CategoryNotFound},
		{"condition failed", fmt.Errorf("award: %w", ErrConditionFailed), CategoryConflict},
		{"unavailable", fmt.Errorf("%w: dial tcp refused", ErrStoreUnavailable), CategoryUnavailable},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"unknown", fmt.Errorf("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestCategory_Transient(t *testing.T) {
	for _, c := range []Category{CategoryUnavailable, CategoryNetwork, CategoryTimeout} {
		assert.True(t, c.Transient(), c)
	}

	for _, c := range []Category{CategoryValidation, CategoryNotFound, CategoryConflict, CategoryDatabase, CategoryUnknown} {
		assert.False(t, c.Transient(), c)
	}
}

func TestNewErrorResponse(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	response := newErrorResponse(CodeNotFound, "profile not found", nil)
	assert.Equal(t, ErrorResponse{Error: CodeNotFound, Message: "profile not found"}, response)

	response = newErrorResponse(CodeServiceUnavailable, "try later", fmt.Errorf("%w: dial tcp 10.0.0.1:5432", ErrStoreUnavailable))
	assert.Equal(t, "storage temporarily unavailable", response.Details)

	body, err := json.Marshal(newErrorResponse(CodeUnauthorized, "authentication required", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"unauthorized","message":"authentication required"}`, string(body))
}

func TestSanitizeError_Production(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	err := fmt.Errorf("%w: password authentication failed for user postgres", ErrStoreUnavailable)
	assert.Equal(t, "storage temporarily unavailable", sanitizeError(err))
}

func TestSanitizeError_Development(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	err := fmt.Errorf("profile u-1: %w", ErrNotFound)
	assert.Equal(t, err.Error(), sanitizeError(err))
}

func TestRespond_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", fmt.Errorf("patch: %w", ErrValidation), http.StatusBadRequest, CodeValidationError},
		{"not found", fmt.Errorf("profile: %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"unavailable", fmt.Errorf("get: %w", ErrStoreUnavailable), http.StatusServiceUnavailable, CodeServiceUnavailable},
		{"other", fmt.Errorf("decode failure"), http.StatusInternalServerError, CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/profiles/me", nil)

			Respond(c, "profile", tt.err)

			assert.Equal(t, tt.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrConditionFailed))

	assert.True(t, IsConditionFailed(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsStoreUnavailable(wrapped))
}
