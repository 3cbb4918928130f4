package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"
	"golang.org/x/sync/errgroup"

	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/sms"
	"go-backoffice-api/pkg/validator"
)

type SmsCampaignService interface {
	ListCampaigns(status model.SmsCampaignStatus) ([]model.SmsCampaign, error)
	GetCampaign(id uuid.UUID) (*model.SmsCampaign, error)
	CreateCampaign(req *SmsCampaignRequest, actor Actor) (*model.SmsCampaign, error)
	UpdateCampaign(id uuid.UUID, req *SmsCampaignRequest, actor Actor) (*model.SmsCampaign, error)
	DeleteCampaign(id uuid.UUID, actor Actor) error
	SendCampaign(ctx context.Context, id uuid.UUID, actor Actor) (*model.SmsCampaign, error)
}

type SmsCampaignRequest struct {
	Name       string   `json:"name" validate:"required,max=255"`
	Message    string   `json:"message" validate:"required,max=1600"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,e164"`
}

// sendingStaleAfter is how long a campaign may sit in sending before a new
// send may take it over.
const sendingStaleAfter = 15 * time.Minute

type smsCampaignService struct {
	repo        repository.SmsCampaignRepository
	sender      sms.Sender
	concurrency int
	wsHub       *ws.Hub
	now         func() time.Time

	staleAfter  time.Duration
	clock       clock.Clock
	finishDelay time.Duration
}

// NewSmsCampaignService sends through sender with at most concurrency
// messages in flight. A nil sender disables sending.
func NewSmsCampaignService(repo repository.SmsCampaignRepository, sender sms.Sender, concurrency int, hub *ws.Hub) SmsCampaignService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &smsCampaignService{
		repo:        repo,
		sender:      sender,
		concurrency: concurrency,
		wsHub:       hub,
		now:         time.Now,
		staleAfter:  sendingStaleAfter,
		clock:       clock.WallClock,
		finishDelay: 250 * time.Millisecond,
	}
}

func (s *smsCampaignService) ListCampaigns(status model.SmsCampaignStatus) ([]model.SmsCampaign, error) {
	return s.repo.FindAll(status)
}

func (s *smsCampaignService) GetCampaign(id uuid.UUID) (*model.SmsCampaign, error) {
	campaign, err := s.repo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "sms campaign %s", id)
	}
	return campaign, nil
}

// dedupe keeps the first occurrence of each number.
func dedupe(numbers []string) []string {
	seen := make(map[string]bool, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (s *smsCampaignService) CreateCampaign(req *SmsCampaignRequest, actor Actor) (*model.SmsCampaign, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	campaign := &model.SmsCampaign{Name: req.Name, Message: req.Message, Status: model.SmsDraft}
	if err := campaign.SetRecipients(dedupe(req.Recipients)); err != nil {
		return nil, errors.Trace(err)
	}
	campaign.Stamp(actor.ID, true)
	if err := s.repo.Create(campaign); err != nil {
		return nil, errors.Annotate(err, "creating sms campaign")
	}
	return campaign, nil
}

func (s *smsCampaignService) UpdateCampaign(id uuid.UUID, req *SmsCampaignRequest, actor Actor) (*model.SmsCampaign, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	campaign, err := s.repo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "sms campaign %s", id)
	}
	if campaign.Status != model.SmsDraft {
		return nil, errors.NotValidf("editing %s campaign", campaign.Status)
	}
	campaign.Name = req.Name
	campaign.Message = req.Message
	if err := campaign.SetRecipients(dedupe(req.Recipients)); err != nil {
		return nil, errors.Trace(err)
	}
	campaign.Stamp(actor.ID, false)
	if err := s.repo.Save(campaign); err != nil {
		return nil, errors.Annotate(err, "saving sms campaign")
	}
	return campaign, nil
}

func (s *smsCampaignService) DeleteCampaign(id uuid.UUID, actor Actor) error {
	campaign, err := s.repo.FindByID(id)
	if err != nil {
		return lookupError(err, "sms campaign %s", id)
	}
	if campaign.Status == model.SmsSending && !s.stale(campaign) {
		return errors.NotValidf("deleting a campaign while it is sending")
	}
	return s.repo.Delete(id, actor.ID)
}

// stale reports whether a sending campaign has outlived its run.
func (s *smsCampaignService) stale(campaign *model.SmsCampaign) bool {
	return campaign.UpdatedAt.Before(s.now().Add(-s.staleAfter))
}

// SendCampaign delivers the message to every recipient and stores the
// outcome. Individual failures do not stop the run.
func (s *smsCampaignService) SendCampaign(ctx context.Context, id uuid.UUID, actor Actor) (*model.SmsCampaign, error) {
	if s.sender == nil {
		return nil, errors.NotSupportedf("sms delivery")
	}
	campaign, err := s.repo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "sms campaign %s", id)
	}
	recipients, err := campaign.RecipientList()
	if err != nil {
		return nil, errors.Annotate(err, "decoding recipients")
	}
	if len(recipients) == 0 {
		return nil, errors.NotValidf("campaign without recipients")
	}
	claimed, err := s.repo.ClaimForSending(id, actor.ID, s.now().Add(-s.staleAfter))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !claimed {
		return nil, errors.NotValidf("sending %s campaign", campaign.Status)
	}
	s.wsHub.Publish(ws.Event{"type": "sms_campaign_sending", "campaign_id": id, "recipients": len(recipients), "user": actor})

	var (
		mu        sync.Mutex
		sent      int
		failed    int
		lastError string
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, to := range recipients {
		g.Go(func() error {
			_, err := s.sender.Send(ctx, to, campaign.Message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				lastError = err.Error()
				metrics.SmsSent.WithLabelValues(metrics.ResultFailed).Inc()
				logger.Warningf("campaign %s: sms to %s failed: %v", id, to, err)
				return nil
			}
			sent++
			metrics.SmsSent.WithLabelValues(metrics.ResultOK).Inc()
			return nil
		})
	}
	_ = g.Wait()

	now := s.now()
	campaign.Status = model.SmsOutcome(sent, failed)
	campaign.SentCount = sent
	campaign.FailedCount = failed
	campaign.LastError = lastError
	campaign.SentAt = &now
	campaign.Stamp(actor.ID, false)
	if err := s.finish(campaign); err != nil {
		return nil, err
	}
	logger.Infof("campaign %s finished: %d sent, %d failed", id, sent, failed)
	s.wsHub.Publish(ws.Event{
		"type":         "sms_campaign_sent",
		"campaign_id":  id,
		"status":       campaign.Status,
		"sent_count":   sent,
		"failed_count": failed,
		"user":         actor,
	})
	return campaign, nil
}

// finish records the run's outcome, retrying while the store errors. If it
// still cannot, the campaign stays in sending until it goes stale.
func (s *smsCampaignService) finish(campaign *model.SmsCampaign) error {
	var stored bool
	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			stored, lastErr = s.repo.FinishSending(campaign)
			return lastErr
		},
		NotifyFunc: func(lastErr error, attempt int) {
			logger.Warningf("campaign %s: recording result failed (attempt %d): %v", campaign.ID, attempt, lastErr)
		},
		Attempts:    4,
		Delay:       s.finishDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       s.clock,
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return errors.Annotatef(lastErr, "recording result of campaign %s", campaign.ID)
	}
	if !stored {
		return errors.Errorf("campaign %s was taken over by another send before its result was recorded", campaign.ID)
	}
	return nil
}
