package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

func TestValidateAndDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice","password":"pw"}`))
		var payload signup

		appErr := ValidateAndDecode(req, &payload)

		assert.Nil(t, appErr)
		assert.Equal(t, "alice", payload.Username)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))

		appErr := ValidateAndDecode(req, &signup{})

		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, "Invalid request body", appErr.Message)
	})

	t.Run("failed validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"al"}`))

		appErr := ValidateAndDecode(req, &signup{})

		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, "Username must be at least 3 characters; Password is required", appErr.Message)
	})
}

func TestAppError_Send(t *testing.T) {
	rr := httptest.NewRecorder()

	NewAppError(http.StatusUnauthorized, "Invalid credentials", errors.New("bcrypt mismatch")).Send(rr)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":401,"error":"Invalid credentials","message":"Invalid credentials"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "bcrypt")
}
