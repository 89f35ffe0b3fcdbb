package catalog

import (
	"context"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// GetOrCreateBySKU finds a product by SKU or creates a minimal catalog
	// entry for it. Upstream documents may reference SKUs that have not been
	// registered yet; the ledger never rejects them for that reason alone.
	GetOrCreateBySKU(ctx context.Context, sku, name string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
