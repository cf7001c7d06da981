package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelHierarchy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"inventory unit is not found", ErrInventoryUnitNotFound, ErrNotFound, true},
		{"request is not found", ErrRequestNotFound, ErrNotFound, true},
		{"wrapped model is not found", fmt.Errorf("load model: %w", ErrModelNotFound), ErrNotFound, true},
		{"model version is duplicate", ErrModelVersionExists, ErrDuplicate, true},
		{"duplicate is not not-found", ErrDuplicate, ErrNotFound, false},
		{"generic error", errors.New("some error"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("inventory_unit", "query", "failed to query inventory", cause)

	assert.Equal(t, "query operation on inventory_unit failed: failed to query inventory: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	wrapped := fmt.Errorf("supply search: %w", err)
	assert.ErrorAs(t, wrapped, &storeErr)
	assert.Equal(t, "inventory_unit", storeErr.Entity)

	bare := NewStoreError("forecast_model", "save", "invalid artifact", nil)
	assert.Equal(t, "save operation on forecast_model failed: invalid artifact", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
