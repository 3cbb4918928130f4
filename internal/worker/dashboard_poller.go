// Package worker runs the API's background loops.
package worker

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/tomb.v2"

	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/service"
	"go-backoffice-api/internal/ws"
)

var logger = loggo.GetLogger("backoffice.worker")

// Publisher receives dashboard snapshots. *ws.Hub satisfies it.
type Publisher interface {
	Publish(ev ws.Event)
}

type DashboardPollerConfig struct {
	Service      service.DashboardService
	Publisher    Publisher
	Clock        clock.Clock
	Interval     time.Duration
	LookbackDays int
}

func (c DashboardPollerConfig) Validate() error {
	if c.Service == nil {
		return errors.NotValidf("nil Service")
	}
	if c.Publisher == nil {
		return errors.NotValidf("nil Publisher")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Interval <= 0 {
		return errors.NotValidf("non-positive Interval")
	}
	if c.LookbackDays <= 0 {
		return errors.NotValidf("non-positive LookbackDays")
	}
	return nil
}

// DashboardPoller recomputes the dashboard metrics on a fixed interval and
// broadcasts them as "dashboard_metrics" events. One loop runs the polls,
// so a slow query delays the next poll instead of overlapping it.
type DashboardPoller struct {
	tomb   tomb.Tomb
	config DashboardPollerConfig
}

func NewDashboardPoller(config DashboardPollerConfig) (*DashboardPoller, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	p := &DashboardPoller{config: config}
	p.tomb.Go(p.loop)
	return p, nil
}

// Kill asks the poller to stop.
func (p *DashboardPoller) Kill() {
	p.tomb.Kill(nil)
}

// Wait blocks until the poller has stopped.
func (p *DashboardPoller) Wait() error {
	return p.tomb.Wait()
}

func (p *DashboardPoller) loop() error {
	ctx := p.tomb.Context(context.Background())
	p.poll(ctx)
	for {
		select {
		case <-p.tomb.Dying():
			return tomb.ErrDying
		case <-p.config.Clock.After(p.config.Interval):
			p.poll(ctx)
		}
	}
}

// poll errors are logged and the loop keeps going; a database hiccup should
// not kill live updates for good.
func (p *DashboardPoller) poll(ctx context.Context) {
	started := p.config.Clock.Now()
	m, err := p.config.Service.Metrics(ctx, started, p.config.LookbackDays)
	metrics.DashboardPollDuration.Observe(p.config.Clock.Now().Sub(started).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			logger.Warningf("dashboard poll failed: %v", err)
		}
		return
	}
	p.config.Publisher.Publish(ws.Event{
		"type":    "dashboard_metrics",
		"metrics": m,
	})
}
