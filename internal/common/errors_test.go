package common_test

import (
	"errors"
	"fmt"
	"testing"

	"recipebox/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := fmt.Errorf("create recipe: %w", common.NewValidationError("recipe_name", "is required"))

	assert.True(t, errors.Is(err, common.ErrValidation))
	assert.False(t, errors.Is(err, common.ErrNotFound))

	var verr *common.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["recipe_name"])
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &common.ValidationError{Fields: map[string]string{
		"username": "is required",
		"name":     "is required",
	}}
	assert.Equal(t, "validation failed: name: is required; username: is required", err.Error())
}
