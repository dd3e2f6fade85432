package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		errType ErrorType
		status  int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeNotFound, http.StatusNotFound},
		{TypeStorage, http.StatusInternalServerError},
		{TypeInternal, http.StatusInternalServerError},
		{ErrorType("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			err := &Error{Type: tt.errType, Message: "boom"}
			assert.Equal(t, tt.status, err.HTTPStatus())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := StorageError("failed to save queue", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to save queue")
	assert.Contains(t, err.Error(), "disk full")
}

func TestWithFieldAccumulatesContext(t *testing.T) {
	err := NotFoundError("queue item not found").
		WithField("id", "abc").
		WithField("backend", "file")

	assert.Equal(t, "abc", err.Context["id"])
	assert.Equal(t, "file", err.Context["backend"])
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("structured error returned unchanged", func(t *testing.T) {
		original := ValidationError("bad input")
		assert.Same(t, original, AsStructuredError(original))
	})

	t.Run("wrapped structured error found", func(t *testing.T) {
		original := NotFoundError("missing")
		wrapped := fmt.Errorf("handler: %w", original)
		assert.Same(t, original, AsStructuredError(wrapped))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		structured := AsStructuredError(errors.New("oops"))
		require.NotNil(t, structured)
		assert.Equal(t, TypeInternal, structured.Type)
	})
}

func TestToResponse(t *testing.T) {
	err := ValidationError("quantity must be at least 1").WithField("quantity", 0)

	resp := err.ToResponse()
	assert.Equal(t, "quantity must be at least 1", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, 0, resp.Context["quantity"])
}
