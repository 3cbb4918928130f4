package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SmsCampaignStatus string

const (
	SmsDraft         SmsCampaignStatus = "draft"
	SmsSending       SmsCampaignStatus = "sending"
	SmsSent          SmsCampaignStatus = "sent"
	SmsPartiallySent SmsCampaignStatus = "partially_sent"
	SmsFailed        SmsCampaignStatus = "failed"
)

type SmsCampaign struct {
	BaseModel
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	Recipients  datatypes.JSON    `json:"recipients"`
	Status      SmsCampaignStatus `gorm:"type:varchar(20);not null;index;default:draft" json:"status"`
	SentCount   int               `gorm:"not null;default:0" json:"sent_count"`
	FailedCount int               `gorm:"not null;default:0" json:"failed_count"`
	SentAt      *time.Time        `json:"sent_at,omitempty"`
	LastError   string            `gorm:"type:text" json:"last_error,omitempty"`
}

func (SmsCampaign) TableName() string {
	return "sms_campaigns"
}

// RecipientList decodes the stored phone numbers.
func (c *SmsCampaign) RecipientList() ([]string, error) {
	if len(c.Recipients) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(c.Recipients, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRecipients stores phone numbers as a JSON array.
func (c *SmsCampaign) SetRecipients(numbers []string) error {
	if numbers == nil {
		numbers = []string{}
	}
	raw, err := json.Marshal(numbers)
	if err != nil {
		return err
	}
	c.Recipients = datatypes.JSON(raw)
	return nil
}

// SmsOutcome derives the final status after a send run.
func SmsOutcome(sent, failed int) SmsCampaignStatus {
	switch {
	case failed == 0 && sent > 0:
		return SmsSent
	case sent > 0:
		return SmsPartiallySent
	}
	return SmsFailed
}
