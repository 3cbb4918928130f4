package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

type Ticket struct {
	BaseModel
	TicketNumber  string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"ticket_number"`
	Subject       string         `gorm:"type:varchar(255);not null" json:"subject"`
	Description   string         `gorm:"type:text" json:"description"`
	Status        TicketStatus   `gorm:"type:varchar(20);not null;index;default:open" json:"status"`
	Priority      TicketPriority `gorm:"type:varchar(20);not null;index;default:medium" json:"priority"`
	CustomerEmail string         `gorm:"type:varchar(255);index" json:"customer_email"`
	OrderID       *uuid.UUID     `gorm:"type:uuid;index" json:"order_id,omitempty"`
	AssigneeID    *uuid.UUID     `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	Assignee      *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	Activities []TicketActivity `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"activities,omitempty"`
}

type TicketActivityType string

const (
	ActivityCreated      TicketActivityType = "created"
	ActivityComment      TicketActivityType = "comment"
	ActivityStatusChange TicketActivityType = "status_change"
	ActivityAssignment   TicketActivityType = "assignment"
)

type TicketActivity struct {
	BaseModel
	TicketID uuid.UUID          `gorm:"type:uuid;not null;index" json:"ticket_id"`
	Type     TicketActivityType `gorm:"type:varchar(20);not null" json:"type"`
	Message  string             `gorm:"type:text" json:"message"`
	ActorID  string             `gorm:"type:varchar(255)" json:"actor_id"`
	Metadata datatypes.JSON     `json:"metadata,omitempty"`
}

func (TicketActivity) TableName() string {
	return "ticketactivities"
}
