package repository

import (
	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	FindAll(search string) ([]model.Supplier, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	FindByName(name string) (*model.Supplier, error)
	Update(supplier *model.Supplier) error
	Delete(id uuid.UUID, deletedBy string) error
	CountOpenPurchaseOrders(id uuid.UUID) (int64, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *supplierRepo) FindAll(search string) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	query := r.db.Order("name ASC")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR contact_name LIKE ? OR email LIKE ?", like, like, like)
	}
	err := query.Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindByName also returns soft-deleted suppliers, which keep their name.
func (r *supplierRepo) FindByName(name string) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.Unscoped().First(&supplier, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) Update(supplier *model.Supplier) error {
	return r.db.Save(supplier).Error
}

func (r *supplierRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Supplier{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Supplier{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *supplierRepo) CountOpenPurchaseOrders(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseOrder{}).
		Where("supplier_id = ? AND status IN ?", id, []model.PurchaseOrderStatus{model.PODraft, model.POOrdered, model.POPartiallyReceived}).
		Count(&count).Error
	return count, err
}
