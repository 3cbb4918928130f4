package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
	"go-backoffice-api/pkg/mailer"
)

func newOrderService(db *gorm.DB, fm *fakeMailer) OrderService {
	orders := repository.NewOrderRepo(db)
	var m mailer.Mailer
	if fm != nil {
		m = fm
	}
	return NewOrderService(orders, repository.NewProductRepo(db), NewNotificationService(m, orders), db, nil)
}

func orderRequest(items ...OrderItemInput) *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		Items:         items,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateOrderReservesStock(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "SKU-1", 10, "12.50")
	svc := newOrderService(db, nil)

	res, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 3}), testActor)
	require.NoError(t, err)

	order := res.Order
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Contains(t, order.OrderNumber, "ORD-")
	require.Len(t, order.Items, 1)
	assert.Equal(t, "SKU-1", order.Items[0].SKU)
	assert.True(t, order.Subtotal.Equal(dec("37.50")))
	assert.True(t, order.Total.Equal(dec("37.50")))
	assert.Equal(t, 7, testdb.Stock(t, db, p.ID))
	assert.False(t, res.ConfirmationSent)
}

func TestCreateOrderRepeatedProductCountsTogether(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "SKU-1", 5, "1.00")
	svc := newOrderService(db, nil)

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		OrderItemInput{ProductID: p.ID, Quantity: 3},
		OrderItemInput{ProductID: p.ID, Quantity: 3},
	), testActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, 5, testdb.Stock(t, db, p.ID))
}

func TestCreateOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Product(t, db, "A", 10, "1.00")
	b := testdb.Product(t, db, "B", 1, "1.00")
	svc := newOrderService(db, nil)

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		OrderItemInput{ProductID: a.ID, Quantity: 2},
		OrderItemInput{ProductID: b.ID, Quantity: 2},
	), testActor)
	require.Error(t, err)
	assert.Equal(t, 10, testdb.Stock(t, db, a.ID))

	orders, err := svc.ListOrders(repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderWithoutValidItems(t *testing.T) {
	db := testdb.Open(t)
	svc := newOrderService(db, nil)

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		OrderItemInput{ProductID: uuid.Nil, Quantity: 1},
		OrderItemInput{ProductID: uuid.New(), Quantity: 0},
	), testActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), msgNoValidItems)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := testdb.Open(t)
	svc := newOrderService(db, nil)

	_, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: uuid.New(), Quantity: 1}), testActor)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestCreateOrderSpreadsDiscount(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Product(t, db, "A", 10, "30.00")
	b := testdb.Product(t, db, "B", 10, "10.00")
	svc := newOrderService(db, nil)

	req := orderRequest(
		OrderItemInput{ProductID: a.ID, Quantity: 1},
		OrderItemInput{ProductID: b.ID, Quantity: 1},
	)
	req.Discount = dec("10.00")
	res, err := svc.CreateOrder(context.Background(), req, testActor)
	require.NoError(t, err)

	order := res.Order
	assert.True(t, order.Subtotal.Equal(dec("40")))
	assert.True(t, order.Total.Equal(dec("30")))
	shares := decimal.Zero
	for _, it := range order.Items {
		shares = shares.Add(it.Discount)
		assert.True(t, it.LineTotal.Equal(it.Subtotal().Sub(it.Discount)))
	}
	assert.True(t, shares.Equal(dec("10")))
}

func TestCreateOrderDiscountKeepsLineTotalsNonNegative(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Product(t, db, "A", 10, "1.00")
	b := testdb.Product(t, db, "B", 10, "0.01")
	c := testdb.Product(t, db, "C", 10, "0.01")
	svc := newOrderService(db, nil)

	req := orderRequest(
		OrderItemInput{ProductID: a.ID, Quantity: 1},
		OrderItemInput{ProductID: b.ID, Quantity: 1},
		OrderItemInput{ProductID: c.ID, Quantity: 1},
	)
	req.Discount = dec("1.01")
	res, err := svc.CreateOrder(context.Background(), req, testActor)
	require.NoError(t, err)

	order := res.Order
	assert.True(t, order.Total.Equal(dec("0.01")))
	lineTotals := decimal.Zero
	for _, it := range order.Items {
		assert.False(t, it.LineTotal.IsNegative(), "%s line total %s", it.SKU, it.LineTotal)
		assert.True(t, it.Discount.LessThanOrEqual(it.Subtotal()))
		lineTotals = lineTotals.Add(it.LineTotal)
	}
	assert.True(t, lineTotals.Equal(order.Total))
}

func TestCreateOrderRejectsOversizedDiscount(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	svc := newOrderService(db, nil)

	req := orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 1})
	req.Discount = dec("6")
	_, err := svc.CreateOrder(context.Background(), req, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, 10, testdb.Stock(t, db, p.ID))
}

func TestCreateOrderSendsConfirmation(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	m := &fakeMailer{}
	svc := newOrderService(db, m)

	req := orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 2})
	req.SendConfirmation = true
	res, err := svc.CreateOrder(context.Background(), req, testActor)
	require.NoError(t, err)
	assert.True(t, res.ConfirmationSent)

	sent := m.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, res.Order.OrderNumber)

	stored, err := svc.GetOrder(res.Order.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ConfirmationSentAt)
}

func TestCreateOrderKeepsOrderWhenConfirmationFails(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	m := &fakeMailer{err: errors.New("smtp down")}
	svc := newOrderService(db, m)

	req := orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 1})
	req.SendConfirmation = true
	res, err := svc.CreateOrder(context.Background(), req, testActor)
	require.NoError(t, err)
	assert.False(t, res.ConfirmationSent)
	assert.NotEmpty(t, res.ConfirmationError)
	assert.Equal(t, 9, testdb.Stock(t, db, p.ID))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	svc := newOrderService(db, nil)

	res, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 4}), testActor)
	require.NoError(t, err)
	require.Equal(t, 6, testdb.Stock(t, db, p.ID))

	order, err := svc.UpdateStatus(res.Order.ID, model.OrderCancelled, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)
	assert.Equal(t, 10, testdb.Stock(t, db, p.ID))

	// a cancelled order cannot come back
	_, err = svc.UpdateStatus(res.Order.ID, model.OrderProcessing, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestShippedOrderKeepsStockOnDelete(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	svc := newOrderService(db, nil)

	res, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 2}), testActor)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(res.Order.ID, model.OrderProcessing, testActor)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(res.Order.ID, model.OrderShipped, testActor)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(res.Order.ID, testActor))
	assert.Equal(t, 8, testdb.Stock(t, db, p.ID))

	_, err = svc.GetOrder(res.Order.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDeletePendingOrderRestoresStock(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "5.00")
	svc := newOrderService(db, nil)

	res, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 2}), testActor)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOrder(res.Order.ID, testActor))
	assert.Equal(t, 10, testdb.Stock(t, db, p.ID))
}

func TestUpdateOrderDiscount(t *testing.T) {
	db := testdb.Open(t)
	p := testdb.Product(t, db, "A", 10, "20.00")
	svc := newOrderService(db, nil)

	res, err := svc.CreateOrder(context.Background(), orderRequest(OrderItemInput{ProductID: p.ID, Quantity: 2}), testActor)
	require.NoError(t, err)

	discount := dec("5")
	note := "gift wrap"
	order, err := svc.UpdateOrder(res.Order.ID, &UpdateOrderRequest{Discount: &discount, Notes: &note}, testActor)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("35")))
	assert.Equal(t, "gift wrap", order.Notes)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Discount.Equal(dec("5")))

	tooMuch := dec("100")
	_, err = svc.UpdateOrder(res.Order.ID, &UpdateOrderRequest{Discount: &tooMuch}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}
