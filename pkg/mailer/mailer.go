// Package mailer delivers transactional email through the provider's SMTP
// relay.
package mailer

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
	"gopkg.in/gomail.v2"
)

var logger = loggo.GetLogger("backoffice.mailer")

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender abstracts the SMTP dial-and-send step.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config configures an SMTP mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	APIKey   string // used as the SMTP password by API-key based providers
	From     string
	FromName string

	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
}

// SMTPMailer sends via gomail with retries on failure.
type SMTPMailer struct {
	sender   Sender
	from     string
	fromName string
	attempts int
	delay    time.Duration
	clock    clock.Clock
}

// NewSMTP returns a mailer dialing cfg.Host for every message.
func NewSMTP(cfg Config) *SMTPMailer {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.APIKey), cfg)
}

// NewWithSender returns a mailer using the given sender.
func NewWithSender(sender Sender, cfg Config) *SMTPMailer {
	m := &SMTPMailer{
		sender:   sender,
		from:     cfg.From,
		fromName: cfg.FromName,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
		clock:    cfg.Clock,
	}
	if m.attempts <= 0 {
		m.attempts = 3
	}
	if m.delay <= 0 {
		m.delay = 500 * time.Millisecond
	}
	if m.clock == nil {
		m.clock = clock.WallClock
	}
	return m
}

// Send builds the MIME message and delivers it, retrying with a doubling
// delay until attempts run out or ctx is done.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.NotValidf("empty recipient")
	}

	gm := gomail.NewMessage()
	if m.fromName != "" {
		gm.SetAddressHeader("From", m.from, m.fromName)
	} else {
		gm.SetHeader("From", m.from)
	}
	if msg.ToName != "" {
		gm.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		gm.SetHeader("To", msg.To)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			lastErr = m.sender.DialAndSend(gm)
			return lastErr
		},
		NotifyFunc: func(lastErr error, attempt int) {
			logger.Warningf("sending %q to %s failed (attempt %d): %v", msg.Subject, msg.To, attempt, lastErr)
		},
		Attempts:    m.attempts,
		Delay:       m.delay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       m.clock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return errors.Annotatef(lastErr, "sending email to %s", msg.To)
	}
	logger.Infof("email %q sent to %s", msg.Subject, msg.To)
	return nil
}
