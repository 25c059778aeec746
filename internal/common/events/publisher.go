// Package events publishes intake events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
)

// SubjectOfferIssued is appended to the configured prefix.
const SubjectOfferIssued = "offer.issued"

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

type Publisher struct {
	conn   Conn
	prefix string
	logger logger.Logger
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name, prefix string, log logger.Logger) (*Publisher, error) {
	log = log.WithFields(map[string]interface{}{"component": "events"})
	opts := []nats.Option{
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", map[string]interface{}{"error": err})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": c.ConnectedUrl()})
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewPublisher(nc, prefix, log), nil
}

func NewPublisher(conn Conn, prefix string, log logger.Logger) *Publisher {
	return &Publisher{conn: conn, prefix: prefix, logger: log}
}

// Subject joins the prefix and name with a dot.
func (p *Publisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *Publisher) Publish(subject, eventType string, data interface{}) error {
	payload, err := json.Marshal(Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return apperrors.NewEventPublishFailedError(subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return apperrors.NewEventPublishFailedError(subject, err)
	}
	p.logger.Debug("Event published", map[string]interface{}{
		"subject": subject,
		"type":    eventType,
	})
	return nil
}

// OfferIssued publishes the issued offer. It satisfies chat.OfferListener.
func (p *Publisher) OfferIssued(_ context.Context, event models.OfferEvent) error {
	return p.Publish(p.Subject(SubjectOfferIssued), SubjectOfferIssued, event)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
