package catalog

import (
	"strings"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry orders and stock positions refer to.
// SKU is the business identifier used by upstream documents; it is unique
// across the catalog.
type Product struct {
	shared.BaseAggregateRoot
	SKU          string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_sku"`
	Name         string          `gorm:"type:varchar(255);not null"`
	Description  string          `gorm:"type:text"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // Default selling price
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(sku, name string, unitPrice valueobject.Money) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		UnitPrice:         unitPrice.Amount(),
		Unit:              "pcs",
		Active:            true,
	}, nil
}

// UpdatePrice updates the default selling price
func (p *Product) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.UnitPrice = price.Amount()
	p.IncrementVersion()

	return nil
}

// UpdateDetails updates name and description
func (p *Product) UpdateDetails(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	p.Name = name
	p.Description = description
	p.IncrementVersion()

	return nil
}

// Deactivate marks the product as no longer orderable
func (p *Product) Deactivate() {
	p.Active = false
	p.IncrementVersion()
}

// Activate marks the product as orderable again
func (p *Product) Activate() {
	p.Active = true
	p.IncrementVersion()
}
