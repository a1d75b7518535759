package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStock(t *testing.T) {
	t.Run("threshold is inclusive", func(t *testing.T) {
		product := &Product{IsActive: true, AvailableQuantity: LowStockThreshold}
		assert.True(t, product.IsLowStock(LowStockThreshold))
	})

	t.Run("above threshold is not low", func(t *testing.T) {
		product := &Product{IsActive: true, AvailableQuantity: LowStockThreshold + 1}
		assert.False(t, product.IsLowStock(LowStockThreshold))
	})

	t.Run("inactive products are ignored", func(t *testing.T) {
		product := &Product{IsActive: false, AvailableQuantity: 0}
		assert.False(t, product.IsLowStock(LowStockThreshold))
	})
}
