package handler

import (
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
}

func NewPurchaseOrderHandler(s service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: s}
}

func (h *PurchaseOrderHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	supplierID, err := queryID(c, "supplier_id")
	if err != nil {
		return respondError(c, err)
	}
	pos, err := h.service.ListPurchaseOrders(repository.PurchaseOrderFilter{
		Status:     model.PurchaseOrderStatus(c.Query("status")),
		SupplierID: supplierID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pos)
}

func (h *PurchaseOrderHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "purchase order")
	if err != nil {
		return respondError(c, err)
	}
	po, err := h.service.GetPurchaseOrder(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(po)
}

func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req service.CreatePurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	po, err := h.service.CreatePurchaseOrder(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": po})
}

func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "purchase order")
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdatePurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	po, err := h.service.UpdatePurchaseOrder(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order updated", "data": po})
}

func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "purchase order")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeletePurchaseOrder(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order deleted"})
}

// Receive books received quantities
// POST /api/v1/purchase-orders/:id/receive  {"items":[{"id":..., "quantity_received":...}]}
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	id, err := paramID(c, "purchase order")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Items []service.ReceiveLine `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	po, err := h.service.Receive(id, req.Items, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Items received", "data": po})
}
