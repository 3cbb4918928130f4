package handler

import (
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SmsCampaignHandler struct {
	service service.SmsCampaignService
}

func NewSmsCampaignHandler(s service.SmsCampaignService) *SmsCampaignHandler {
	return &SmsCampaignHandler{service: s}
}

func (h *SmsCampaignHandler) GetCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.service.ListCampaigns(model.SmsCampaignStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(campaigns)
}

func (h *SmsCampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "campaign")
	if err != nil {
		return respondError(c, err)
	}
	campaign, err := h.service.GetCampaign(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(campaign)
}

func (h *SmsCampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req service.SmsCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	campaign, err := h.service.CreateCampaign(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Campaign created", "data": campaign})
}

func (h *SmsCampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "campaign")
	if err != nil {
		return respondError(c, err)
	}
	var req service.SmsCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	campaign, err := h.service.UpdateCampaign(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Campaign updated", "data": campaign})
}

func (h *SmsCampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "campaign")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteCampaign(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Campaign deleted"})
}

// SendCampaign delivers the campaign now
// POST /api/v1/sms-campaigns/:id/send
func (h *SmsCampaignHandler) SendCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "campaign")
	if err != nil {
		return respondError(c, err)
	}
	campaign, err := h.service.SendCampaign(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Campaign sent", "data": campaign})
}
