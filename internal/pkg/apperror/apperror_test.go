package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusByKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad").Status())
	assert.Equal(t, http.StatusBadRequest, NoOpUpdate("empty").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("missing").Status())
	assert.Equal(t, http.StatusInternalServerError, Decode("broken", nil).Status())
	assert.Equal(t, http.StatusServiceUnavailable, Storage(errors.New("down")).Status())
}

func TestKindsAreDistinguishableThroughWrapping(t *testing.T) {
	err := fmt.Errorf("listing logs: %w", NotFound("log record 9 not found"))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, KindNotFound, appErr.Kind)
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
}

func TestErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestIsOnPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindStorage))
}
