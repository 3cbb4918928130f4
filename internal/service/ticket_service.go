package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/idgen"
	"go-backoffice-api/pkg/validator"
)

type TicketService interface {
	ListTickets(filter repository.TicketFilter) ([]model.Ticket, error)
	GetTicket(id uuid.UUID) (*model.Ticket, error)
	CreateTicket(req *CreateTicketRequest, actor Actor) (*model.Ticket, error)
	UpdateTicket(id uuid.UUID, req *UpdateTicketRequest, actor Actor) (*model.Ticket, error)
	AddComment(id uuid.UUID, message string, actor Actor) (*model.TicketActivity, error)
	DeleteTicket(id uuid.UUID, actor Actor) error
}

type CreateTicketRequest struct {
	Subject       string               `json:"subject" validate:"required,max=255"`
	Description   string               `json:"description"`
	Priority      model.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CustomerEmail string               `json:"customer_email" validate:"omitempty,email"`
	OrderID       *uuid.UUID           `json:"order_id"`
	AssigneeID    *uuid.UUID           `json:"assignee_id"`
}

// UpdateTicketRequest changes only the fields that are set. An AssigneeID of
// uuid.Nil unassigns the ticket.
type UpdateTicketRequest struct {
	Subject     *string               `json:"subject" validate:"omitnil,min=1,max=255"`
	Description *string               `json:"description"`
	Status      *model.TicketStatus   `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Priority    *model.TicketPriority `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	AssigneeID  *uuid.UUID            `json:"assignee_id"`
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	userRepo   repository.UserRepository
	db         *gorm.DB
	wsHub      *ws.Hub
}

func NewTicketService(tRepo repository.TicketRepository, uRepo repository.UserRepository, db *gorm.DB, hub *ws.Hub) TicketService {
	return &ticketService{ticketRepo: tRepo, userRepo: uRepo, db: db, wsHub: hub}
}

func (s *ticketService) ListTickets(filter repository.TicketFilter) ([]model.Ticket, error) {
	return s.ticketRepo.FindAll(filter)
}

func (s *ticketService) GetTicket(id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "ticket %s", id)
	}
	return ticket, nil
}

func (s *ticketService) checkAssignee(id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotValidf("assignee %s", *id)
		}
		return errors.Trace(err)
	}
	return nil
}

func activity(ticketID uuid.UUID, kind model.TicketActivityType, message string, actor Actor, meta map[string]interface{}) *model.TicketActivity {
	a := &model.TicketActivity{
		TicketID: ticketID,
		Type:     kind,
		Message:  message,
		ActorID:  actor.ID,
	}
	if meta != nil {
		raw, _ := json.Marshal(meta)
		a.Metadata = datatypes.JSON(raw)
	}
	a.Stamp(actor.ID, true)
	return a
}

func (s *ticketService) CreateTicket(req *CreateTicketRequest, actor Actor) (*model.Ticket, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(req.AssigneeID); err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		TicketNumber:  idgen.Next(idgen.PrefixTicket),
		Subject:       req.Subject,
		Description:   req.Description,
		Status:        model.TicketOpen,
		Priority:      req.Priority,
		CustomerEmail: req.CustomerEmail,
		OrderID:       req.OrderID,
	}
	if ticket.Priority == "" {
		ticket.Priority = model.PriorityMedium
	}
	if req.AssigneeID != nil && *req.AssigneeID != uuid.Nil {
		ticket.AssigneeID = req.AssigneeID
	}
	ticket.Stamp(actor.ID, true)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ticketRepo.Create(tx, ticket); err != nil {
			return errors.Annotate(err, "creating ticket")
		}
		return s.ticketRepo.AddActivity(tx, activity(ticket.ID, model.ActivityCreated,
			fmt.Sprintf("%s opened the ticket", actor.Name), actor, nil))
	})
	if err != nil {
		return nil, err
	}
	s.publish("ticket_created", ticket, actor)
	return s.ticketRepo.FindByID(ticket.ID)
}

func (s *ticketService) UpdateTicket(id uuid.UUID, req *UpdateTicketRequest, actor Actor) (*model.Ticket, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(req.AssigneeID); err != nil {
		return nil, err
	}

	var updated model.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.ticketRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "ticket %s", id)
		}
		if req.Subject != nil {
			ticket.Subject = *req.Subject
		}
		if req.Description != nil {
			ticket.Description = *req.Description
		}
		if req.Priority != nil {
			ticket.Priority = *req.Priority
		}

		if req.Status != nil && *req.Status != ticket.Status {
			act := activity(id, model.ActivityStatusChange,
				fmt.Sprintf("%s changed status from %s to %s", actor.Name, ticket.Status, *req.Status),
				actor, map[string]interface{}{"from": ticket.Status, "to": *req.Status})
			if err := s.ticketRepo.AddActivity(tx, act); err != nil {
				return errors.Annotate(err, "logging status change")
			}
			ticket.Status = *req.Status
		}

		if req.AssigneeID != nil {
			next := req.AssigneeID
			if *next == uuid.Nil {
				next = nil
			}
			if !sameAssignee(ticket.AssigneeID, next) {
				meta := map[string]interface{}{"from": ticket.AssigneeID, "to": next}
				msg := fmt.Sprintf("%s unassigned the ticket", actor.Name)
				if next != nil {
					msg = fmt.Sprintf("%s assigned the ticket to %s", actor.Name, *next)
				}
				if err := s.ticketRepo.AddActivity(tx, activity(id, model.ActivityAssignment, msg, actor, meta)); err != nil {
					return errors.Annotate(err, "logging assignment")
				}
				ticket.AssigneeID = next
			}
		}

		ticket.Stamp(actor.ID, false)
		if err := s.ticketRepo.Save(tx, ticket); err != nil {
			return errors.Annotate(err, "saving ticket")
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish("ticket_updated", &updated, actor)
	return s.ticketRepo.FindByID(id)
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *ticketService) AddComment(id uuid.UUID, message string, actor Actor) (*model.TicketActivity, error) {
	if message == "" {
		return nil, errors.NotValidf("empty comment")
	}
	var act *model.TicketActivity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.ticketRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "ticket %s", id)
		}
		act = activity(ticket.ID, model.ActivityComment, message, actor, nil)
		return s.ticketRepo.AddActivity(tx, act)
	})
	if err != nil {
		return nil, err
	}
	s.wsHub.Publish(ws.Event{"type": "ticket_comment", "ticket_id": id, "activity": act, "user": actor})
	return act, nil
}

func (s *ticketService) DeleteTicket(id uuid.UUID, actor Actor) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ticketRepo.Delete(tx, id, actor.ID); err != nil {
			return lookupError(err, "ticket %s", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.wsHub.Publish(ws.Event{"type": "ticket_deleted", "ticket_id": id, "user": actor})
	return nil
}

func (s *ticketService) publish(kind string, t *model.Ticket, actor Actor) {
	s.wsHub.Publish(ws.Event{
		"type":          kind,
		"ticket_id":     t.ID,
		"ticket_number": t.TicketNumber,
		"status":        t.Status,
		"priority":      t.Priority,
		"user":          actor,
	})
}
