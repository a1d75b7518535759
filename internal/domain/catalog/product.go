package catalog

import (
	"time"

	"github.com/google/uuid"
)

// LowStockThreshold is the available quantity at or below which an
// active product is considered low on stock.
const LowStockThreshold = 2

// Product is an item available for rental. It is owned and mutated by
// the catalog collaborator; this engine only reads it.
type Product struct {
	ID                uuid.UUID `json:"id"`
	TenantID          uuid.UUID `json:"tenant_id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock reports whether the product is active with availability
// at or below the given threshold. Inactive products are never low
// stock regardless of quantity.
func (p *Product) IsLowStock(threshold int) bool {
	return p.IsActive && p.AvailableQuantity <= threshold
}
