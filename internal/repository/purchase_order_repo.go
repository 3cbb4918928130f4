package repository

import (
	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderFilter struct {
	Status     model.PurchaseOrderStatus
	SupplierID *uuid.UUID
}

type PurchaseOrderRepository interface {
	FindAll(filter PurchaseOrderFilter) ([]model.PurchaseOrder, error)
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	Create(po *model.PurchaseOrder) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	Save(tx *gorm.DB, po *model.PurchaseOrder) error
	UpdateItemReceived(tx *gorm.DB, itemID uuid.UUID, quantity int, updatedBy string) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) FindAll(filter PurchaseOrderFilter) ([]model.PurchaseOrder, error) {
	var pos []model.PurchaseOrder
	query := r.db.Preload("Supplier").Preload("Items").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	err := query.Find(&pos).Error
	return pos, err
}

func (r *purchaseOrderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) Create(po *model.PurchaseOrder) error {
	return r.db.Create(po).Error
}

// LockByID loads the PO and its items inside tx, locking the PO row.
func (r *purchaseOrderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) Save(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Omit(clause.Associations).Save(po).Error
}

func (r *purchaseOrderRepo) UpdateItemReceived(tx *gorm.DB, itemID uuid.UUID, quantity int, updatedBy string) error {
	return tx.Model(&model.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity_received": quantity,
			"updated_by":        updatedBy,
		}).Error
}

func (r *purchaseOrderRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.PurchaseOrder{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.PurchaseOrder{}, "id = ?", id).Error
}
