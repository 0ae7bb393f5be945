package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("Staff", nil), http.StatusNotFound},
		{InvalidState("Staff is on leave"), http.StatusBadRequest},
		{Conflict("overlap"), http.StatusConflict},
		{Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{Internal(stderrors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", Conflict("overlap"))

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, ErrorCode(0), CodeOf(stderrors.New("plain")))
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Queue item not found", NotFound("Queue item", nil).Error())
}
