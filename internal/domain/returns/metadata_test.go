package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnMetadata(t *testing.T) {
	t.Run("accepts attributes matching the sale schema", func(t *testing.T) {
		meta, err := NewReturnMetadata(uuid.New(), ReturnTypeSale, map[string]any{
			"gift_receipt":        true,
			"exchange_preference": "same model",
		})
		require.NoError(t, err)
		assert.NoError(t, meta.Validate())
	})

	t.Run("accepts attributes matching the rental schema", func(t *testing.T) {
		_, err := NewReturnMetadata(uuid.New(), ReturnTypeRental, map[string]any{
			"odometer_reading":     float64(1520),
			"accessories_returned": true,
			"inspection_notes":     "minor wear",
		})
		require.NoError(t, err)
	})

	t.Run("rejects attributes from another type's schema", func(t *testing.T) {
		_, err := NewReturnMetadata(uuid.New(), ReturnTypeSale, map[string]any{
			"tracking_number": "1Z999",
		})
		assert.Error(t, err)
	})

	t.Run("rejects mistyped values", func(t *testing.T) {
		_, err := NewReturnMetadata(uuid.New(), ReturnTypePurchase, map[string]any{
			"carrier": 42,
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown keys on read", func(t *testing.T) {
		meta := &ReturnMetadata{
			ID:         uuid.New(),
			ReturnID:   uuid.New(),
			ReturnType: ReturnTypeRental,
			Attributes: map[string]any{"warranty_code": "W-1"},
		}
		assert.Error(t, meta.Validate())
	})

	t.Run("number attributes accept ints built in code", func(t *testing.T) {
		_, err := NewReturnMetadata(uuid.New(), ReturnTypeRental, map[string]any{
			"odometer_reading": 1520,
		})
		assert.NoError(t, err)
	})
}
