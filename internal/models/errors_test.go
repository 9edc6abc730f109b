package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewFieldValidationError("post", "create", []FieldError{{Path: "title", Message: "is required"}}), fiber.StatusBadRequest},
		{NewConstraintViolation("Post", errors.New("fk")), fiber.StatusUnprocessableEntity},
		{NewNotFoundError("Post", 4), fiber.StatusNotFound},
		{fmt.Errorf("wrapped: %w", NewConflictError("taken")), fiber.StatusConflict},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestAppError_FieldsAndResponse(t *testing.T) {
	err := NewFieldValidationError("user", "signUp", []FieldError{
		{Path: "email", Message: "must be a valid email address"},
		{Path: "age", Message: "must not be negative"},
	})
	assert.Equal(t, "invalid user (signUp) (email: must be a valid email address; age: must not be negative)", err.Error())

	f, ok := err.Field("age")
	require.True(t, ok)
	assert.Equal(t, "must not be negative", f.Message)
	_, ok = err.Field("password")
	assert.False(t, ok)

	resp := err.Response()
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Equal(t, "signUp", resp.Branch)
	assert.Len(t, resp.Fields, 2)
	assert.Empty(t, resp.Details)

	internal := NewInternalError(errors.New("dsn password=secret")).Response()
	assert.Empty(t, internal.Details)
}

func TestRespondWithError_HidesUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, CodeInternal, body.Code)
	assert.NotContains(t, string(raw), "connection refused")
}
