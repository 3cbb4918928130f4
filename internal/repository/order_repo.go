package repository

import (
	"time"

	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status model.OrderStatus
	Search string
}

type OrderRepository interface {
	FindAll(filter OrderFilter) ([]model.Order, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	Create(tx *gorm.DB, order *model.Order) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	Save(tx *gorm.DB, order *model.Order) error
	SaveItems(tx *gorm.DB, items []model.OrderItem) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
	MarkConfirmationSent(id uuid.UUID, at time.Time) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) FindAll(filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.Preload("Items").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?", like, like, like)
	}
	err := query.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts the order together with its items.
func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save writes the order header. Items are saved separately.
func (r *orderRepo) Save(tx *gorm.DB, order *model.Order) error {
	return tx.Omit(clause.Associations).Save(order).Error
}

func (r *orderRepo) SaveItems(tx *gorm.DB, items []model.OrderItem) error {
	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Order{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) MarkConfirmationSent(id uuid.UUID, at time.Time) error {
	return r.db.Model(&model.Order{}).Where("id = ?", id).Update("confirmation_sent_at", at).Error
}
