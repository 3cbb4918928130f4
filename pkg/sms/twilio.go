// Package sms sends text messages through Twilio's Messages API.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
	"github.com/valyala/fastjson"
)

var logger = loggo.GetLogger("backoffice.sms")

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Sender sends one SMS and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Config configures a Twilio client.
type Config struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	BaseURL             string

	HTTPClient *http.Client
	Attempts   int
	Delay      time.Duration
	Clock      clock.Clock
}

// Twilio is a Sender backed by the Twilio REST API.
type Twilio struct {
	cfg    Config
	client *http.Client
}

// NewTwilio returns a client with defaults filled in.
func NewTwilio(cfg Config) *Twilio {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Twilio{cfg: cfg, client: client}
}

// APIError is a non-2xx answer from Twilio.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio: status %d code %d: %s", e.Status, e.Code, e.Message)
}

// Temporary reports whether retrying may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Send posts one message, retrying rate limits and server errors.
func (t *Twilio) Send(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", errors.NotValidf("empty recipient")
	}
	var sid string
	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			sid, lastErr = t.post(ctx, to, body)
			return lastErr
		},
		IsFatalError: func(err error) bool {
			if apiErr, ok := errors.Cause(err).(*APIError); ok {
				return !apiErr.Temporary()
			}
			return ctx.Err() != nil
		},
		NotifyFunc: func(lastErr error, attempt int) {
			logger.Debugf("sms to %s failed (attempt %d): %v", to, attempt, lastErr)
		},
		Attempts:    t.cfg.Attempts,
		Delay:       t.cfg.Delay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       t.cfg.Clock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		if lastErr != nil {
			return "", lastErr
		}
		return "", errors.Trace(err)
	}
	return sid, nil
}

func (t *Twilio) post(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	form.Set("MessagingServiceSid", t.cfg.MessagingServiceSID)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.cfg.BaseURL, t.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Trace(err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", errors.Annotate(err, "twilio request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Annotate(err, "reading twilio response")
	}

	var p fastjson.Parser
	v, parseErr := p.ParseBytes(raw)
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if parseErr == nil {
			apiErr.Code = v.GetInt("code")
			if msg := v.GetStringBytes("message"); len(msg) > 0 {
				apiErr.Message = string(msg)
			}
		}
		return "", apiErr
	}
	if parseErr != nil {
		return "", errors.Annotate(parseErr, "decoding twilio response")
	}
	return string(v.GetStringBytes("sid")), nil
}
