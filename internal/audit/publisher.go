// Package audit publishes security-relevant auth events to Kafka so
// that reuse detections and mass revocations can be alerted on outside
// the request path. Publishing is best-effort: a broker outage never
// fails the request that produced the event.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/filerunner/backend/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventLogin          = "login"
	EventLoginFailed    = "login_failed"
	EventTokenRotated   = "token_rotated"
	EventReuseDetected  = "token_reuse_detected"
	EventLogout         = "logout"
	EventLogoutAll      = "logout_all"
	EventPasswordChange = "password_change"
)

type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	FamilyID  string    `json:"family_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a nil Publisher when brokers is empty; a nil
// Publisher is safe to use and drops every event.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	})
	if err != nil {
		logger.GetLogger().Warn("Failed to publish audit event",
			zap.String("event_type", event.Type),
			zap.Error(err))
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
