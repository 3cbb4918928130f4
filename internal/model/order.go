package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsStock reports whether the order's items are still reserved from
// inventory, i.e. they have not left the warehouse and were not cancelled.
func (s OrderStatus) HoldsStock() bool {
	return s == OrderPending || s == OrderProcessing
}

// Order is a customer sale with its line items.
type Order struct {
	BaseModel
	OrderNumber        string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	CustomerName       string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail      string          `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone      string          `gorm:"type:varchar(50)" json:"customer_phone"`
	ShippingAddress    string          `gorm:"type:text" json:"shipping_address"`
	Status             OrderStatus     `gorm:"type:varchar(20);not null;index;default:pending" json:"status"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Discount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Notes              string          `gorm:"type:text" json:"notes"`
	ConfirmationSentAt *time.Time      `json:"confirmation_sent_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	SKU         string          `gorm:"type:varchar(50)" json:"sku"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// Subtotal is quantity * unit price before discount.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}
