package handler

import (
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(s service.TicketService) *TicketHandler {
	return &TicketHandler{service: s}
}

func (h *TicketHandler) GetTickets(c *fiber.Ctx) error {
	assignee, err := queryID(c, "assignee_id")
	if err != nil {
		return respondError(c, err)
	}
	tickets, err := h.service.ListTickets(repository.TicketFilter{
		Status:     model.TicketStatus(c.Query("status")),
		Priority:   model.TicketPriority(c.Query("priority")),
		AssigneeID: assignee,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tickets)
}

func (h *TicketHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "ticket")
	if err != nil {
		return respondError(c, err)
	}
	ticket, err := h.service.GetTicket(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ticket)
}

func (h *TicketHandler) CreateTicket(c *fiber.Ctx) error {
	var req service.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	ticket, err := h.service.CreateTicket(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Ticket created", "data": ticket})
}

func (h *TicketHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "ticket")
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	ticket, err := h.service.UpdateTicket(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ticket updated", "data": ticket})
}

// AddComment appends a comment to the ticket's activity log
// POST /api/v1/tickets/:id/comments
func (h *TicketHandler) AddComment(c *fiber.Ctx) error {
	id, err := paramID(c, "ticket")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	act, err := h.service.AddComment(id, req.Message, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Comment added", "data": act})
}

func (h *TicketHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "ticket")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteTicket(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ticket deleted"})
}
