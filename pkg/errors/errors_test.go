package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := Clone(ErrNotFound, "Student not found")
	got := FromError(err)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "Student not found", got.Message)
}

func TestFromErrorHidesUnknownCause(t *testing.T) {
	cause := stdErrors.New("pq: connection refused")
	got := FromError(cause)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestIsMatchesByCode(t *testing.T) {
	assert.True(t, stdErrors.Is(Clone(ErrConflict, "Student ID already exists"), ErrConflict))
	assert.False(t, stdErrors.Is(Clone(ErrConflict, "x"), ErrNotFound))
	assert.True(t, stdErrors.Is(Internal(stdErrors.New("boom"), ""), ErrInternal))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	_ = Clone(ErrForbidden, "Access denied. Teachers only.")
	assert.Equal(t, "forbidden", ErrForbidden.Message)
}
