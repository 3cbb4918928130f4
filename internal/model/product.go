package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"type:varchar(100);index" json:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price" validate:"gte=0"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost" validate:"gte=0"`
	Stock        int             `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	ReorderLevel int             `gorm:"not null;default:0" json:"reorder_level" validate:"gte=0"`
	Unit         string          `gorm:"type:varchar(20)" json:"unit"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`
}

// IsLowStock reports whether stock is at or under the reorder level, or
// under threshold when no reorder level is set.
func (p *Product) IsLowStock(threshold int) bool {
	if p.ReorderLevel > 0 {
		return p.Stock <= p.ReorderLevel
	}
	return p.Stock < threshold
}
