package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(ErrValidation, "users must be positive", "users=-1", "req-123")

	assert.Equal(t, ErrValidation, err.Code)
	assert.Equal(t, "req-123", err.RequestID)
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, "VALIDATION_ERROR: users must be positive", err.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("spawn_rate", "must be positive", -2.0)

	assert.Equal(t, "spawn_rate", err.Field)
	assert.Equal(t, -2.0, err.Value)
	assert.Contains(t, err.Error(), "spawn_rate")
	assert.Contains(t, err.Error(), "must be positive")
}
