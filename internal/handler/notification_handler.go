package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-backoffice-api/internal/service"
)

// NotificationHandler serves the public order-confirmation endpoints the
// storefront calls. Responses are {success, message} or {error}.
type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// Register mounts both endpoints on r with permissive CORS.
func (h *NotificationHandler) Register(r fiber.Router) {
	r.All("/send-order-confirmation", allowAnyOrigin, postOnly, h.SendOrderConfirmation)
	r.All("/resend-order-confirmation", allowAnyOrigin, postOnly, h.ResendOrderConfirmation)
}

func allowAnyOrigin(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusOK)
	}
	return c.Next()
}

func postOnly(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}
	return c.Next()
}

// SendOrderConfirmation emails a confirmation built from the request body
// POST /api/send-order-confirmation
func (h *NotificationHandler) SendOrderConfirmation(c *fiber.Ctx) error {
	var req service.ConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.service.SendOrderConfirmation(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Order confirmation email sent successfully"})
}

// ResendOrderConfirmation emails the confirmation of a stored order again
// POST /api/resend-order-confirmation
func (h *NotificationHandler) ResendOrderConfirmation(c *fiber.Ctx) error {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order_id is required"})
	}
	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order_id"})
	}
	if err := h.service.ResendOrderConfirmation(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Order confirmation email resent successfully"})
}
