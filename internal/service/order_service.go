package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/idgen"
	"go-backoffice-api/pkg/money"
	"go-backoffice-api/pkg/validator"
)

// msgNoValidItems is the NotValid message for an order with no usable line item.
const msgNoValidItems = "Please add at least one valid order item."

type OrderService interface {
	ListOrders(filter repository.OrderFilter) ([]model.Order, error)
	GetOrder(id uuid.UUID) (*model.Order, error)
	CreateOrder(ctx context.Context, req *CreateOrderRequest, actor Actor) (*OrderResult, error)
	UpdateOrder(id uuid.UUID, req *UpdateOrderRequest, actor Actor) (*model.Order, error)
	UpdateStatus(id uuid.UUID, status model.OrderStatus, actor Actor) (*model.Order, error)
	DeleteOrder(id uuid.UUID, actor Actor) error
}

type OrderItemInput struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"` // defaults to the product price
}

type CreateOrderRequest struct {
	CustomerName     string           `json:"customer_name" validate:"required"`
	CustomerEmail    string           `json:"customer_email" validate:"required,email"`
	CustomerPhone    string           `json:"customer_phone"`
	ShippingAddress  string           `json:"shipping_address"`
	Notes            string           `json:"notes"`
	Discount         decimal.Decimal  `json:"discount" validate:"gte=0"`
	Items            []OrderItemInput `json:"items"`
	SendConfirmation bool             `json:"send_confirmation"`
}

type UpdateOrderRequest struct {
	CustomerName    *string            `json:"customer_name" validate:"omitnil,min=1"`
	CustomerEmail   *string            `json:"customer_email" validate:"omitnil,email"`
	CustomerPhone   *string            `json:"customer_phone"`
	ShippingAddress *string            `json:"shipping_address"`
	Notes           *string            `json:"notes"`
	Status          *model.OrderStatus `json:"status"`
	Discount        *decimal.Decimal   `json:"discount" validate:"omitnil,gte=0"`
}

// OrderResult is a created order plus the outcome of the optional
// confirmation email. The order stands even when the email fails.
type OrderResult struct {
	Order             *model.Order `json:"order"`
	ConfirmationSent  bool         `json:"confirmation_sent"`
	ConfirmationError string       `json:"confirmation_error,omitempty"`
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	notifier    NotificationService
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewOrderService(oRepo repository.OrderRepository, pRepo repository.ProductRepository, notifier NotificationService, db *gorm.DB, hub *ws.Hub) OrderService {
	return &orderService{
		orderRepo:   oRepo,
		productRepo: pRepo,
		notifier:    notifier,
		db:          db,
		wsHub:       hub,
	}
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, error) {
	return s.orderRepo.FindAll(filter)
}

func (s *orderService) GetOrder(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "order %s", id)
	}
	return order, nil
}

// validItems drops lines without a product or with a non-positive quantity.
func validItems(items []OrderItemInput) []OrderItemInput {
	var out []OrderItemInput
	for _, it := range items {
		if it.ProductID == uuid.Nil || it.Quantity <= 0 {
			continue
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// applyDiscount spreads the order discount over its items and recomputes
// line and order totals.
func applyDiscount(order *model.Order, discount decimal.Decimal) error {
	subtotals := make([]decimal.Decimal, len(order.Items))
	for i := range order.Items {
		subtotals[i] = order.Items[i].Subtotal()
	}
	subtotal := money.Sum(subtotals...)
	discount = discount.Round(money.Cents)
	if discount.GreaterThan(subtotal) {
		return errors.NotValidf("discount %s exceeds subtotal %s", discount.StringFixed(money.Cents), subtotal.StringFixed(money.Cents))
	}

	shares := money.AllocateDiscount(discount, subtotals)
	for i := range order.Items {
		order.Items[i].Discount = shares[i]
		order.Items[i].LineTotal = subtotals[i].Sub(shares[i])
	}
	order.Subtotal = subtotal
	order.Discount = discount
	order.Total = subtotal.Sub(discount)
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, actor Actor) (*OrderResult, error) {
	items := validItems(req.Items)
	if len(items) == 0 {
		return nil, errors.NewNotValid(nil, msgNoValidItems)
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNumber:     idgen.Next(idgen.PrefixOrder),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		Status:          model.OrderPending,
	}
	order.Stamp(actor.ID, true)

	var touched []model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// remaining tracks stock per product across repeated lines
		remaining := map[uuid.UUID]int{}
		products := map[uuid.UUID]*model.Product{}
		for _, in := range items {
			product, ok := products[in.ProductID]
			if !ok {
				var err error
				product, err = s.productRepo.LockByID(tx, in.ProductID)
				if err != nil {
					return lookupError(err, "product %s", in.ProductID)
				}
				products[in.ProductID] = product
				remaining[in.ProductID] = product.Stock
			}
			if remaining[in.ProductID] < in.Quantity {
				return errors.NotValidf("insufficient stock for %s: %d available, %d requested",
					product.Name, remaining[in.ProductID], in.Quantity)
			}
			remaining[in.ProductID] -= in.Quantity

			price := product.Price
			if in.UnitPrice != nil {
				price = in.UnitPrice.Round(money.Cents)
			}
			item := model.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				SKU:         product.SKU,
				Quantity:    in.Quantity,
				UnitPrice:   price,
			}
			item.Stamp(actor.ID, true)
			order.Items = append(order.Items, item)
		}

		if err := applyDiscount(order, req.Discount); err != nil {
			return err
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return errors.Annotate(err, "creating order")
		}
		for id, left := range remaining {
			p := products[id]
			if err := s.productRepo.AdjustStock(tx, id, left-p.Stock, actor.ID); err != nil {
				return errors.Annotatef(err, "updating stock of %s", p.SKU)
			}
			p.Stock = left
			touched = append(touched, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	logger.Infof("order %s created by %s (%s)", order.OrderNumber, actor.ID, order.Total.StringFixed(money.Cents))
	s.wsHub.Publish(ws.Event{
		"type":         "order_created",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"user":         actor,
		"message":      fmt.Sprintf("%s created order %s", actor.Name, order.OrderNumber),
	})
	s.publishStock(touched, actor, "order_created")

	result := &OrderResult{Order: order}
	if req.SendConfirmation {
		if err := s.notifier.ConfirmOrder(ctx, order); err != nil {
			logger.Warningf("order %s stored but confirmation failed: %v", order.OrderNumber, err)
			result.ConfirmationError = err.Error()
		} else {
			result.ConfirmationSent = true
		}
	}
	return result, nil
}

func (s *orderService) UpdateOrder(id uuid.UUID, req *UpdateOrderRequest, actor Actor) (*model.Order, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var restored []model.Product
	var previous model.OrderStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "order %s", id)
		}
		previous = order.Status

		if req.CustomerName != nil {
			order.CustomerName = *req.CustomerName
		}
		if req.CustomerEmail != nil {
			order.CustomerEmail = *req.CustomerEmail
		}
		if req.CustomerPhone != nil {
			order.CustomerPhone = *req.CustomerPhone
		}
		if req.ShippingAddress != nil {
			order.ShippingAddress = *req.ShippingAddress
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}

		if req.Discount != nil && !req.Discount.Round(money.Cents).Equal(order.Discount) {
			if !order.Status.HoldsStock() {
				return errors.NotValidf("discount change on %s order", order.Status)
			}
			if err := applyDiscount(order, *req.Discount); err != nil {
				return err
			}
			for i := range order.Items {
				order.Items[i].Stamp(actor.ID, false)
			}
			if err := s.orderRepo.SaveItems(tx, order.Items); err != nil {
				return errors.Annotate(err, "saving order items")
			}
		}

		if req.Status != nil && *req.Status != order.Status {
			if !order.Status.CanTransition(*req.Status) {
				return errors.NotValidf("status change from %s to %s", order.Status, *req.Status)
			}
			if *req.Status == model.OrderCancelled && order.Status.HoldsStock() {
				restored, err = s.restoreStock(tx, order, actor)
				if err != nil {
					return err
				}
			}
			order.Status = *req.Status
		}

		order.Stamp(actor.ID, false)
		if err := s.orderRepo.Save(tx, order); err != nil {
			return errors.Annotate(err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	event := ws.Event{
		"type":         "order_updated",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"user":         actor,
	}
	if previous != order.Status {
		event["previous_status"] = previous
		event["message"] = fmt.Sprintf("%s moved order %s to %s", actor.Name, order.OrderNumber, order.Status)
	}
	s.wsHub.Publish(event)
	s.publishStock(restored, actor, "order_cancelled")
	return order, nil
}

func (s *orderService) UpdateStatus(id uuid.UUID, status model.OrderStatus, actor Actor) (*model.Order, error) {
	return s.UpdateOrder(id, &UpdateOrderRequest{Status: &status}, actor)
}

// DeleteOrder soft-deletes the order and puts reserved stock back.
func (s *orderService) DeleteOrder(id uuid.UUID, actor Actor) error {
	var restored []model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "order %s", id)
		}
		if order.Status.HoldsStock() {
			if restored, err = s.restoreStock(tx, order, actor); err != nil {
				return err
			}
		}
		return s.orderRepo.Delete(tx, id, actor.ID)
	})
	if err != nil {
		return err
	}
	s.wsHub.Publish(ws.Event{"type": "order_deleted", "order_id": id, "user": actor})
	s.publishStock(restored, actor, "order_deleted")
	return nil
}

func (s *orderService) restoreStock(tx *gorm.DB, order *model.Order, actor Actor) ([]model.Product, error) {
	qty := map[uuid.UUID]int{}
	var ids []uuid.UUID
	for _, it := range order.Items {
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}

	var out []model.Product
	for _, id := range ids {
		product, err := s.productRepo.LockByID(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// product deleted since the sale; nothing to return stock to
			continue
		}
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err := s.productRepo.AdjustStock(tx, id, qty[id], actor.ID); err != nil {
			return nil, errors.Annotatef(err, "restoring stock of %s", product.SKU)
		}
		product.Stock += qty[id]
		out = append(out, *product)
	}
	return out, nil
}

func (s *orderService) publishStock(products []model.Product, actor Actor, action string) {
	for i := range products {
		s.wsHub.Publish(ws.Event{
			"type":    "stock_update",
			"action":  action,
			"product": stockPayload(&products[i]),
			"user":    actor,
		})
	}
}
