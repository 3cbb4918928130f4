package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuForArea(t *testing.T) {
	for _, e := range MenuFor(AreaMobile, nil) {
		assert.Equal(t, AreaMobile, e.Area)
	}
	assert.Len(t, MenuFor("", nil), len(Navigation))
}

func TestMenuForPrivileges(t *testing.T) {
	entries := MenuFor(AreaSidebar, []string{PrivOrderView, PrivTicketView})
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/orders", "/tickets"}, paths)

	assert.Empty(t, MenuFor(AreaSidebar, []string{}))
}

func TestSmsRecipientsRoundTrip(t *testing.T) {
	var c SmsCampaign
	assert.NoError(t, c.SetRecipients([]string{"+15550001111", "+15550002222"}))
	got, err := c.RecipientList()
	assert.NoError(t, err)
	assert.Equal(t, []string{"+15550001111", "+15550002222"}, got)
}

func TestSmsOutcome(t *testing.T) {
	assert.Equal(t, SmsSent, SmsOutcome(3, 0))
	assert.Equal(t, SmsPartiallySent, SmsOutcome(2, 1))
	assert.Equal(t, SmsFailed, SmsOutcome(0, 3))
	assert.Equal(t, SmsFailed, SmsOutcome(0, 0))
}
