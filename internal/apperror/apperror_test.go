package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("All fields are required"), want: http.StatusBadRequest},
		{name: "conflict", err: Conflict("User with email or username already exists"), want: http.StatusConflict},
		{name: "auth", err: Unauthorized("Invalid user credentials"), want: http.StatusUnauthorized},
		{name: "not found", err: NotFound("User does not exist"), want: http.StatusNotFound},
		{name: "upload", err: Upload("Error while uploading avatar", errors.New("s3 down")), want: http.StatusBadRequest},
		{name: "rate limited", err: RateLimited("Too many requests"), want: http.StatusTooManyRequests},
		{name: "too large", err: TooLarge("Request body is too large"), want: http.StatusRequestEntityTooLarge},
		{name: "internal", err: Internal("Something went wrong", nil), want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("op: %w", Conflict("dup")), want: http.StatusConflict},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Something went wrong while generating tokens", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Something went wrong while generating tokens: connection refused", err.Error())

	var appErr *Error
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &appErr))
	assert.Equal(t, "Something went wrong while generating tokens", appErr.Message)
}
