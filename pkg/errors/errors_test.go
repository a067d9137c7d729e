package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("appointment", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("invalid date", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, Conflict("slot taken", nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(errors.New("boom")).StatusCode())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "appointment not found", NotFound("appointment", nil).Error())

	wrapped := Conflict("slot taken", errors.New("duplicate key"))
	assert.Equal(t, "slot taken: duplicate key", wrapped.Error())
	assert.Equal(t, "slot taken", wrapped.Message)
}

func TestAsAppErrorUnwraps(t *testing.T) {
	inner := Conflict("slot taken", nil)
	err := fmt.Errorf("failed to create appointment: %w", inner)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrConflict, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Conflict("slot taken", cause)
	assert.True(t, errors.Is(err, cause))
}
