package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProductHandler struct {
	service           service.ProductService
	lowStockThreshold int
}

func NewProductHandler(s service.ProductService, lowStockThreshold int) *ProductHandler {
	return &ProductHandler{service: s, lowStockThreshold: lowStockThreshold}
}

// GetProducts lists products
// GET /api/v1/products?search=&supplier_id=&low_stock=true
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	supplierID, err := queryID(c, "supplier_id")
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.service.ListProducts(repository.ProductFilter{
		Search:     c.Query("search"),
		SupplierID: supplierID,
		LowStock:   c.QueryBool("low_stock"),
		Threshold:  h.lowStockThreshold,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.CreateProduct(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return respondError(c, err)
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.service.UpdateProduct(id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteProduct(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ExportProducts streams the catalogue as a spreadsheet
// GET /api/v1/products/export
func (h *ProductHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportProducts(&buf); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="products-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	return c.Send(buf.Bytes())
}
