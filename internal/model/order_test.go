package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransition(OrderProcessing))
	assert.True(t, OrderPending.CanTransition(OrderCancelled))
	assert.True(t, OrderProcessing.CanTransition(OrderShipped))
	assert.True(t, OrderShipped.CanTransition(OrderDelivered))

	assert.False(t, OrderPending.CanTransition(OrderDelivered))
	assert.False(t, OrderShipped.CanTransition(OrderCancelled))
	assert.False(t, OrderDelivered.CanTransition(OrderPending))
	assert.False(t, OrderCancelled.CanTransition(OrderProcessing))
}

func TestOrderStatusHoldsStock(t *testing.T) {
	assert.True(t, OrderPending.HoldsStock())
	assert.True(t, OrderProcessing.HoldsStock())
	assert.False(t, OrderShipped.HoldsStock())
	assert.False(t, OrderCancelled.HoldsStock())
}

func TestReceiptStatus(t *testing.T) {
	items := func(pairs ...[2]int) []PurchaseOrderItem {
		var out []PurchaseOrderItem
		for _, p := range pairs {
			out = append(out, PurchaseOrderItem{QuantityOrdered: p[0], QuantityReceived: p[1]})
		}
		return out
	}

	assert.Equal(t, POOrdered, ReceiptStatus(POOrdered, items([2]int{5, 0}, [2]int{3, 0})))
	assert.Equal(t, POPartiallyReceived, ReceiptStatus(POOrdered, items([2]int{5, 2}, [2]int{3, 0})))
	assert.Equal(t, POPartiallyReceived, ReceiptStatus(POOrdered, items([2]int{5, 5}, [2]int{3, 1})))
	assert.Equal(t, POReceived, ReceiptStatus(POPartiallyReceived, items([2]int{5, 5}, [2]int{3, 3})))
	assert.Equal(t, POOrdered, ReceiptStatus(POOrdered, nil))
}
