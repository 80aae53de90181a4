package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// WebhookSink posts events as JSON to a notification endpoint. Calls go
// through a circuit breaker so a dead endpoint stops slowing down mutations.
type WebhookSink struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

type webhookBody struct {
	Event   string    `json:"event"`
	SentAt  time.Time `json:"sent_at"`
	Payload any       `json:"payload"`
}

func NewWebhookSink(url string, timeout time.Duration, logger *logrus.Logger) *WebhookSink {
	s := &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EventsWebhookCB",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infof("circuit breaker %q changed from %q to %q", name, from.String(), to.String())
		},
	})
	return s
}

func (s *WebhookSink) Publish(name string, payload any) {
	if err := s.send(name, payload); err != nil {
		s.logger.WithError(err).WithField("event", name).Warn("event webhook delivery failed")
	}
}

func (s *WebhookSink) send(name string, payload any) error {
	body, err := json.Marshal(webhookBody{Event: name, SentAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook answered %s", resp.Status)
		}
		return nil, nil
	})
	return err
}

// State reports the breaker state, closed when deliveries succeed.
func (s *WebhookSink) State() gobreaker.State {
	return s.breaker.State()
}
