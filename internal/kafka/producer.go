// Package kafka publishes conversation analytics events. Downstream
// consumers build funnel and abandonment reports from them.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/KikeGitHub/lealtix-main/internal/config"
	"github.com/KikeGitHub/lealtix-main/internal/models"
)

const (
	EventOrderConfirmed   = "order_confirmed"
	EventSessionAbandoned = "session_abandoned"
)

// Event is the published analytics record. Keyed by session so one
// conversation lands on one partition in order.
type Event struct {
	Type       string            `json:"type"`
	SessionID  string            `json:"sessionId"`
	TenantID   int64             `json:"tenantId"`
	CustomerID int64             `json:"customerId,omitempty"`
	OrderID    string            `json:"orderId,omitempty"`
	CartSize   int               `json:"cartSize"`
	CartItems  []models.CartItem `json:"cartItems,omitempty"`
	Subtotal   float64           `json:"subtotal"`
	Discount   float64           `json:"discount"`
	Total      float64           `json:"total"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type Producer interface {
	OrderConfirmed(ctx context.Context, session *models.Session, orderID string)
	SessionAbandoned(ctx context.Context, session *models.Session)
}

type producer struct {
	writer *kafka.Writer
}

// noopProducer drops events when Kafka is disabled in configuration.
type noopProducer struct{}

func (noopProducer) OrderConfirmed(context.Context, *models.Session, string) {}
func (noopProducer) SessionAbandoned(context.Context, *models.Session)       {}

func NewProducer(lc fx.Lifecycle, conf *config.Config) Producer {
	if !conf.Kafka.Enabled {
		log.Warnf(context.Background(), "Kafka producer is disabled in configuration")
		return noopProducer{}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(conf.Kafka.Brokers...),
		Topic:                  conf.Kafka.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
	return &producer{writer: w}
}

func (p *producer) OrderConfirmed(ctx context.Context, session *models.Session, orderID string) {
	e := newEvent(EventOrderConfirmed, session)
	e.OrderID = orderID
	p.publish(ctx, e)
}

func (p *producer) SessionAbandoned(ctx context.Context, session *models.Session) {
	p.publish(ctx, newEvent(EventSessionAbandoned, session))
}

func newEvent(eventType string, session *models.Session) Event {
	e := Event{
		Type:       eventType,
		SessionID:  session.ID,
		TenantID:   session.TenantID,
		CartSize:   len(session.Cart),
		CartItems:  session.Cart,
		Subtotal:   session.Subtotal,
		Discount:   session.Discount,
		Total:      session.Total,
		OccurredAt: time.Now(),
	}
	if session.Customer != nil {
		e.CustomerID = session.Customer.ID
	}
	return e
}

// publish is best effort. Analytics must never break the conversation,
// so failures are logged and swallowed.
func (p *producer) publish(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		log.Errorw(ctx, "Failed to marshal analytics event", "error", err, "type", e.Type)
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Errorw(ctx, "Failed to publish analytics event",
			"error", fmt.Errorf("write messages: %w", err),
			"type", e.Type,
			"session_id", e.SessionID)
	}
}
