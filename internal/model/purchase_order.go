package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PODraft             PurchaseOrderStatus = "draft"
	POOrdered           PurchaseOrderStatus = "ordered"
	POPartiallyReceived PurchaseOrderStatus = "partially_received"
	POReceived          PurchaseOrderStatus = "received"
	POCancelled         PurchaseOrderStatus = "cancelled"
)

// Receivable reports whether goods can be booked against the PO.
func (s PurchaseOrderStatus) Receivable() bool {
	return s == POOrdered || s == POPartiallyReceived
}

// Open reports whether the PO still expects goods or edits.
func (s PurchaseOrderStatus) Open() bool {
	return s == PODraft || s.Receivable()
}

type PurchaseOrder struct {
	BaseModel
	PONumber     string              `gorm:"column:po_number;type:varchar(40);uniqueIndex;not null" json:"po_number"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier     *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;index;default:draft" json:"status"`
	OrderDate    *time.Time          `json:"order_date,omitempty"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	ReceivedAt   *time.Time          `json:"received_at,omitempty"`
	Notes        string              `gorm:"type:text" json:"notes"`
	Total        decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// PurchaseOrderItem table is "purchaseorderitems", matching the hosted schema.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	QuantityOrdered  int             `gorm:"not null" json:"quantity_ordered"`
	QuantityReceived int             `gorm:"not null;default:0" json:"quantity_received"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
}

func (PurchaseOrderItem) TableName() string {
	return "purchaseorderitems"
}

// ReceiptStatus derives the PO status from its items' received quantities.
// It returns current unchanged when nothing has been received yet.
func ReceiptStatus(current PurchaseOrderStatus, items []PurchaseOrderItem) PurchaseOrderStatus {
	if len(items) == 0 {
		return current
	}
	complete, started := true, false
	for _, it := range items {
		if it.QuantityReceived < it.QuantityOrdered {
			complete = false
		}
		if it.QuantityReceived > 0 {
			started = true
		}
	}
	switch {
	case complete:
		return POReceived
	case started:
		return POPartiallyReceived
	}
	return current
}
