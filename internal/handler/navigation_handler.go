package handler

import (
	"go-backoffice-api/internal/model"

	"github.com/gofiber/fiber/v2"
)

// GetNavigation returns the menu entries the caller may open
// GET /api/v1/navigation?area=sidebar|mobile
func GetNavigation(c *fiber.Ctx) error {
	area := model.MenuArea(c.Query("area"))
	if area != "" && area != model.AreaSidebar && area != model.AreaMobile {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown menu area '" + string(area) + "'"})
	}
	privileges, ok := c.Locals("user_privileges").([]string)
	if !ok {
		privileges = []string{}
	}
	return c.JSON(model.MenuFor(area, privileges))
}
