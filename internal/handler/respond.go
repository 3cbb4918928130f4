package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"go-backoffice-api/internal/service"
)

var logger = loggo.GetLogger("backoffice.handler")

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, errors.NotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errors.AlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, errors.Unauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, errors.Forbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"error": msg} with the mapped status. Internal errors
// are logged with their trace.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Errorf("%s %s: %s", c.Method(), c.Path(), errors.ErrorStack(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// actorFrom reads the user set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{ID: "system", Name: "Unknown"}
	if id, ok := c.Locals("user_id").(string); ok {
		actor.ID = id
	}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	return actor
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.NotValidf("%s ID", what)
	}
	return id, nil
}

// queryID parses an optional UUID query parameter.
func queryID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.NotValidf("%s", key)
	}
	return &id, nil
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}
