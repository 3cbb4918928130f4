package service

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/validator"
)

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	ExportProducts(w io.Writer) error
}

type ProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	Cost         decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock        int             `json:"stock" validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	Unit         string          `json:"unit"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
}

func (r *ProductRequest) apply(p *model.Product) {
	p.SKU = r.SKU
	p.Name = r.Name
	p.Description = r.Description
	p.Category = r.Category
	p.Price = r.Price.Round(2)
	p.Cost = r.Cost.Round(2)
	p.Stock = r.Stock
	p.ReorderLevel = r.ReorderLevel
	p.Unit = r.Unit
	p.SupplierID = r.SupplierID
}

type productService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, sRepo repository.SupplierRepository, db *gorm.DB, hub *ws.Hub) ProductService {
	return &productService{
		productRepo:  pRepo,
		supplierRepo: sRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "product %s", id)
	}
	return product, nil
}

func (s *productService) checkSupplier(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.supplierRepo.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotValidf("supplier %s", *id)
		}
		return errors.Trace(err)
	}
	return nil
}

// checkSKUFree fails with AlreadyExists while any product, deleted or not,
// holds sku.
func (s *productService) checkSKUFree(sku string) error {
	existing, err := s.productRepo.FindBySKU(sku)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return errors.Trace(err)
	case existing.DeletedAt.Valid:
		return errors.AlreadyExistsf("SKU %s on a deleted product", sku)
	}
	return errors.AlreadyExistsf("SKU %s", sku)
}

func (s *productService) CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := s.checkSKUFree(req.SKU); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(req.SupplierID); err != nil {
		return nil, err
	}

	product := &model.Product{}
	req.apply(product)
	product.Stamp(actor.ID, true)
	if err := s.productRepo.Create(product); err != nil {
		return nil, errors.Annotate(err, "creating product")
	}

	s.wsHub.Publish(ws.Event{
		"type":    "stock_update",
		"action":  "product_created",
		"product": stockPayload(product),
		"user":    actor,
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *productService) UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(req.SupplierID); err != nil {
		return nil, err
	}

	var updated model.Product
	var oldStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "product %s", id)
		}
		if req.SKU != existing.SKU {
			var clash int64
			if err := tx.Unscoped().Model(&model.Product{}).Where("sku = ? AND id <> ?", req.SKU, id).Count(&clash).Error; err != nil {
				return err
			}
			if clash > 0 {
				return errors.AlreadyExistsf("SKU %s", req.SKU)
			}
		}
		oldStock = existing.Stock
		req.apply(existing)
		existing.Stamp(actor.ID, false)
		if err := tx.Omit("Supplier").Save(existing).Error; err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := stockPayload(&updated)
	payload["old_stock"] = oldStock
	s.wsHub.Publish(ws.Event{
		"type":    "stock_update",
		"action":  "product_updated",
		"product": payload,
		"user":    actor,
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return &updated, nil
}

func (s *productService) DeleteProduct(id uuid.UUID, actor Actor) error {
	if err := s.productRepo.Delete(id, actor.ID); err != nil {
		return lookupError(err, "product %s", id)
	}
	s.wsHub.Publish(ws.Event{
		"type":       "stock_update",
		"action":     "product_deleted",
		"product_id": id,
		"user":       actor,
	})
	return nil
}

var productExportHeader = []interface{}{"SKU", "NAME", "CATEGORY", "UNIT", "PRICE", "COST", "STOCK", "REORDER LEVEL", "SUPPLIER"}

// ExportProducts writes every product as an xlsx workbook.
func (s *productService) ExportProducts(w io.Writer) error {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return errors.Annotate(err, "loading products")
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Products"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Trace(err)
	}
	if err := f.SetSheetRow(sheet, "A1", &productExportHeader); err != nil {
		return errors.Trace(err)
	}
	for i, p := range products {
		supplier := ""
		if p.Supplier != nil {
			supplier = p.Supplier.Name
		}
		price, _ := p.Price.Float64()
		cost, _ := p.Cost.Float64()
		row := []interface{}{p.SKU, p.Name, p.Category, p.Unit, price, cost, p.Stock, p.ReorderLevel, supplier}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Trace(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Trace(err)
		}
	}
	_, err = f.WriteTo(w)
	return errors.Annotate(err, "writing workbook")
}

func stockPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":    p.ID,
		"sku":   p.SKU,
		"name":  p.Name,
		"stock": p.Stock,
		"price": p.Price,
	}
}
