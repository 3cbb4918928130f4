package handler

import (
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	service service.SupplierService
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s}
}

func (h *SupplierHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suppliers)
}

func (h *SupplierHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return respondError(c, err)
	}
	supplier, err := h.service.GetSupplier(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	supplier, err := h.service.CreateSupplier(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return respondError(c, err)
	}
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	supplier, err := h.service.UpdateSupplier(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *SupplierHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteSupplier(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

// ImportSuppliers reads a multipart "file" field holding an xlsx workbook
// POST /api/v1/suppliers/import
func (h *SupplierHandler) ImportSuppliers(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "File is required"})
	}
	file, err := header.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer file.Close()

	result, err := h.service.ImportSuppliers(file, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Import finished", "data": result})
}
