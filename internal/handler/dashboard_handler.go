package handler

import (
	"strconv"
	"time"

	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service     service.DashboardService
	defaultDays int
}

func NewDashboardHandler(s service.DashboardService, defaultDays int) *DashboardHandler {
	return &DashboardHandler{service: s, defaultDays: defaultDays}
}

func (h *DashboardHandler) days(c *fiber.Ctx) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return h.defaultDays
	}
	return days
}

// GetMetrics compares revenue, orders and customers with the prior period
// GET /api/v1/dashboard/metrics?days=30
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	m, err := h.service.Metrics(c.UserContext(), time.Now(), h.days(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(m)
}

// GetSales returns daily revenue for charts
// GET /api/v1/dashboard/sales?days=30
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	days := h.days(c)
	data, err := h.service.SalesChart(c.UserContext(), time.Now(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}
