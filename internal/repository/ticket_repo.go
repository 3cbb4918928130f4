package repository

import (
	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketFilter struct {
	Status     model.TicketStatus
	Priority   model.TicketPriority
	AssigneeID *uuid.UUID
}

type TicketRepository interface {
	FindAll(filter TicketFilter) ([]model.Ticket, error)
	FindByID(id uuid.UUID) (*model.Ticket, error)
	Create(tx *gorm.DB, ticket *model.Ticket) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Ticket, error)
	Save(tx *gorm.DB, ticket *model.Ticket) error
	AddActivity(tx *gorm.DB, activity *model.TicketActivity) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
}

type ticketRepo struct {
	db *gorm.DB
}

func NewTicketRepo(db *gorm.DB) TicketRepository {
	return &ticketRepo{db}
}

func (r *ticketRepo) FindAll(filter TicketFilter) ([]model.Ticket, error) {
	var tickets []model.Ticket
	query := r.db.Preload("Assignee").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	err := query.Find(&tickets).Error
	return tickets, err
}

// FindByID loads the ticket with its activity log oldest first.
func (r *ticketRepo) FindByID(id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.Preload("Assignee").
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepo) Create(tx *gorm.DB, ticket *model.Ticket) error {
	return tx.Omit(clause.Associations).Create(ticket).Error
}

func (r *ticketRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepo) Save(tx *gorm.DB, ticket *model.Ticket) error {
	return tx.Omit(clause.Associations).Save(ticket).Error
}

func (r *ticketRepo) AddActivity(tx *gorm.DB, activity *model.TicketActivity) error {
	return tx.Create(activity).Error
}

func (r *ticketRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Ticket{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("ticket_id = ?", id).Delete(&model.TicketActivity{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Ticket{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
