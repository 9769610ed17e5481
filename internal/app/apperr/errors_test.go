package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("pin is required"), http.StatusBadRequest},
		{fmt.Errorf("login: %w", New(ErrUnauthorized, "Invalid username or password")), http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("account abc: %w", ErrNotFound), http.StatusNotFound},
		{New(ErrConflict, "Account already exists"), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "PIN must be 6 digits", Message(Validation("PIN must be %d digits", 6)))
	assert.Equal(t, "pin is required", Message(fmt.Errorf("register: %w", Validation("pin is required"))))
	assert.Empty(t, Message(ErrConflict))
	assert.Empty(t, Message(errors.New("raw")))
}

func TestErrorString(t *testing.T) {
	err := New(ErrNotFound, "Account not found")
	assert.Equal(t, "not found: Account not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
