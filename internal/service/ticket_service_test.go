package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
)

func newTicketService(db *gorm.DB) TicketService {
	return NewTicketService(repository.NewTicketRepo(db), repository.NewUserRepo(db), db, nil)
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, FullName: "Agent " + email, IsActive: true}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreateTicketDefaultsAndLogsCreation(t *testing.T) {
	db := testdb.Open(t)
	svc := newTicketService(db)

	ticket, err := svc.CreateTicket(&CreateTicketRequest{Subject: "Broken parcel", CustomerEmail: "c@example.com"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TicketOpen, ticket.Status)
	assert.Equal(t, model.PriorityMedium, ticket.Priority)
	assert.Contains(t, ticket.TicketNumber, "TCK-")
	require.Len(t, ticket.Activities, 1)
	assert.Equal(t, model.ActivityCreated, ticket.Activities[0].Type)
}

func TestCreateTicketRejectsUnknownAssignee(t *testing.T) {
	db := testdb.Open(t)
	svc := newTicketService(db)

	ghost := uuid.New()
	_, err := svc.CreateTicket(&CreateTicketRequest{Subject: "x", AssigneeID: &ghost}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestUpdateTicketRecordsHistory(t *testing.T) {
	db := testdb.Open(t)
	agent := seedUser(t, db, "agent@example.com")
	svc := newTicketService(db)

	ticket, err := svc.CreateTicket(&CreateTicketRequest{Subject: "Refund"}, testActor)
	require.NoError(t, err)

	status := model.TicketInProgress
	ticket, err = svc.UpdateTicket(ticket.ID, &UpdateTicketRequest{Status: &status, AssigneeID: &agent.ID}, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TicketInProgress, ticket.Status)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, agent.ID, *ticket.AssigneeID)

	var kinds []model.TicketActivityType
	var statusMeta map[string]interface{}
	for _, a := range ticket.Activities {
		kinds = append(kinds, a.Type)
		if a.Type == model.ActivityStatusChange {
			require.NoError(t, json.Unmarshal(a.Metadata, &statusMeta))
		}
	}
	assert.Equal(t, []model.TicketActivityType{model.ActivityCreated, model.ActivityStatusChange, model.ActivityAssignment}, kinds)
	assert.Equal(t, "open", statusMeta["from"])
	assert.Equal(t, "in_progress", statusMeta["to"])

	// unassign, same status is not logged again
	nobody := uuid.Nil
	ticket, err = svc.UpdateTicket(ticket.ID, &UpdateTicketRequest{Status: &status, AssigneeID: &nobody}, testActor)
	require.NoError(t, err)
	assert.Nil(t, ticket.AssigneeID)
	assert.Len(t, ticket.Activities, 4)
}

func TestTicketComments(t *testing.T) {
	db := testdb.Open(t)
	svc := newTicketService(db)

	ticket, err := svc.CreateTicket(&CreateTicketRequest{Subject: "Where is my order"}, testActor)
	require.NoError(t, err)

	_, err = svc.AddComment(ticket.ID, "", testActor)
	assert.True(t, errors.Is(err, errors.NotValid))

	act, err := svc.AddComment(ticket.ID, "Called the courier", testActor)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityComment, act.Type)

	_, err = svc.AddComment(uuid.New(), "hello", testActor)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDeleteTicket(t *testing.T) {
	db := testdb.Open(t)
	svc := newTicketService(db)

	ticket, err := svc.CreateTicket(&CreateTicketRequest{Subject: "Spam"}, testActor)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTicket(ticket.ID, testActor))

	_, err = svc.GetTicket(ticket.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}
