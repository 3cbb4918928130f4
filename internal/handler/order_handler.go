package handler

import (
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// GetOrders lists orders
// GET /api/v1/orders?status=&search=
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(repository.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.GetOrder(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// CreateOrder stores an order and its items
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	result, err := h.service.CreateOrder(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	resp := fiber.Map{"message": "Order created", "data": result.Order}
	if req.SendConfirmation {
		resp["confirmation_sent"] = result.ConfirmationSent
	}
	if result.ConfirmationError != "" {
		resp["confirmation_error"] = result.ConfirmationError
	}
	return c.Status(201).JSON(resp)
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.UpdateOrder(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// UpdateStatus moves an order along its lifecycle
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.Status == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Status is required"})
	}
	order, err := h.service.UpdateStatus(id, req.Status, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteOrder(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}
