package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
	"go-backoffice-api/pkg/sms"
)

type fakeSender struct {
	mu   sync.Mutex
	to   []string
	fail map[string]bool
}

func (f *fakeSender) Send(_ context.Context, to, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	if f.fail[to] {
		return "", errors.New("undeliverable")
	}
	return "SM" + to, nil
}

func newCampaign(t *testing.T, svc SmsCampaignService, numbers ...string) *model.SmsCampaign {
	t.Helper()
	c, err := svc.CreateCampaign(&SmsCampaignRequest{Name: "Spring sale", Message: "20% off today", Recipients: numbers}, testActor)
	require.NoError(t, err)
	return c
}

func TestCreateCampaignDedupesRecipients(t *testing.T) {
	db := testdb.Open(t)
	svc := NewSmsCampaignService(repository.NewSmsCampaignRepo(db), nil, 2, nil)

	c := newCampaign(t, svc, "+15550001", "+15550002", "+15550001")
	numbers, err := c.RecipientList()
	require.NoError(t, err)
	assert.Equal(t, []string{"+15550001", "+15550002"}, numbers)
	assert.Equal(t, model.SmsDraft, c.Status)

	_, err = svc.CreateCampaign(&SmsCampaignRequest{Name: "bad", Message: "x", Recipients: []string{"555-0001"}}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSendCampaignWithoutSender(t *testing.T) {
	db := testdb.Open(t)
	svc := NewSmsCampaignService(repository.NewSmsCampaignRepo(db), nil, 2, nil)
	c := newCampaign(t, svc, "+15550001")

	_, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	assert.True(t, errors.Is(err, errors.NotSupported))
}

func TestSendCampaignCountsOutcomes(t *testing.T) {
	db := testdb.Open(t)
	sender := &fakeSender{fail: map[string]bool{"+15550003": true}}
	svc := NewSmsCampaignService(repository.NewSmsCampaignRepo(db), sender, 2, nil)
	c := newCampaign(t, svc, "+15550001", "+15550002", "+15550003")

	sent, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.SmsPartiallySent, sent.Status)
	assert.Equal(t, 2, sent.SentCount)
	assert.Equal(t, 1, sent.FailedCount)
	assert.NotNil(t, sent.SentAt)
	assert.ElementsMatch(t, []string{"+15550001", "+15550002", "+15550003"}, sender.to)

	// a finished campaign is neither editable nor sendable again
	_, err = svc.SendCampaign(context.Background(), c.ID, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = svc.UpdateCampaign(c.ID, &SmsCampaignRequest{Name: "x", Message: "y", Recipients: []string{"+15550001"}}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSendCampaignAllFailedCanRetry(t *testing.T) {
	db := testdb.Open(t)
	sender := &fakeSender{fail: map[string]bool{"+15550001": true}}
	svc := NewSmsCampaignService(repository.NewSmsCampaignRepo(db), sender, 1, nil)
	c := newCampaign(t, svc, "+15550001")

	res, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.SmsFailed, res.Status)
	assert.NotEmpty(t, res.LastError)

	sender.fail = nil
	res, err = svc.SendCampaign(context.Background(), c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.SmsSent, res.Status)
}

// flakyCampaignRepo fails the first failures result writes. A negative
// count fails all of them.
type flakyCampaignRepo struct {
	repository.SmsCampaignRepository
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *flakyCampaignRepo) FinishSending(c *model.SmsCampaign) (bool, error) {
	r.mu.Lock()
	r.calls++
	fail := r.failures != 0
	if r.failures > 0 {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return false, errors.New("database is locked")
	}
	return r.SmsCampaignRepository.FinishSending(c)
}

func newFlakyCampaignService(db *gorm.DB, sender sms.Sender, failures int) (*smsCampaignService, *flakyCampaignRepo) {
	repo := &flakyCampaignRepo{SmsCampaignRepository: repository.NewSmsCampaignRepo(db), failures: failures}
	svc := NewSmsCampaignService(repo, sender, 1, nil).(*smsCampaignService)
	svc.finishDelay = time.Millisecond
	return svc, repo
}

func TestSendCampaignRetriesRecordingResult(t *testing.T) {
	db := testdb.Open(t)
	svc, repo := newFlakyCampaignService(db, &fakeSender{}, 2)
	c := newCampaign(t, svc, "+15550001")

	res, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.SmsSent, res.Status)
	assert.Equal(t, 3, repo.calls)

	stored, err := svc.GetCampaign(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SmsSent, stored.Status)
	assert.Equal(t, 1, stored.SentCount)
}

func TestStuckCampaignIsReclaimedOnceStale(t *testing.T) {
	db := testdb.Open(t)
	sender := &fakeSender{}
	svc, repo := newFlakyCampaignService(db, sender, -1)
	c := newCampaign(t, svc, "+15550001")

	_, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	stored, err := svc.GetCampaign(c.ID)
	require.NoError(t, err)
	require.Equal(t, model.SmsSending, stored.Status)

	// while the run may still be alive the campaign is off limits
	_, err = svc.SendCampaign(context.Background(), c.ID, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.True(t, errors.Is(svc.DeleteCampaign(c.ID, testActor), errors.NotValid))

	repo.mu.Lock()
	repo.failures = 0
	repo.mu.Unlock()
	svc.now = func() time.Time { return time.Now().Add(sendingStaleAfter + 5*time.Minute) }

	res, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.SmsSent, res.Status)
	assert.Len(t, sender.to, 2)
}

func TestStaleSendingCampaignCanBeDeleted(t *testing.T) {
	db := testdb.Open(t)
	svc, _ := newFlakyCampaignService(db, &fakeSender{}, -1)
	c := newCampaign(t, svc, "+15550001")

	_, err := svc.SendCampaign(context.Background(), c.ID, testActor)
	require.Error(t, err)

	svc.now = func() time.Time { return time.Now().Add(sendingStaleAfter + 5*time.Minute) }
	require.NoError(t, svc.DeleteCampaign(c.ID, testActor))
	_, err = svc.GetCampaign(c.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}

var _ sms.Sender = (*fakeSender)(nil)
