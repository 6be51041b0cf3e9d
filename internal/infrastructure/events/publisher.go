package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
)

const (
	exchangeName = "pricetrack.events"
	exchangeType = "topic"

	EventTypeItemCreated = "item.created"
	eventVersion         = "1.0.0"

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
	confirmTimeout = 5 * time.Second
	confirmBuffer  = 16
)

var (
	errNotAcknowledged = errors.New("event not acknowledged")
	errConfirmTimeout  = errors.New("confirmation timeout")
	errConfirmsClosed  = errors.New("confirmation channel closed")
)

// Event is the envelope of every message published to the exchange.
type Event struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	EventVersion string `json:"event_version"`
	Timestamp    string `json:"timestamp"`
	Payload      any    `json:"payload"`
}

type ItemCreatedPayload struct {
	ItemID      string `json:"item_id"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	URL         string `json:"url"`
	Date        string `json:"date"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	GetNextPublishSeqNo() uint64
	Close() error
}

// Publisher sends domain events to RabbitMQ with publisher confirms.
// Publishes are serialized and each waits for the confirmation carrying its
// own delivery tag, so a confirmation that arrives after its publish timed out
// is discarded by the next publish.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	confirms <-chan amqp.Confirmation
	log      *zap.Logger

	// sem holds one token while a publish owns the channel.
	sem            chan struct{}
	backoff        time.Duration
	confirmTimeout time.Duration
	now            func() time.Time
}

var _ item.EventPublisher = (*Publisher)(nil)

func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	log = log.Named("events")

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	log.Info("Connected to RabbitMQ", zap.String("exchange", exchangeName))

	p := newPublisher(ch, ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer)), log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, confirms <-chan amqp.Confirmation, log *zap.Logger) *Publisher {
	return &Publisher{
		channel:        ch,
		confirms:       confirms,
		log:            log,
		sem:            make(chan struct{}, 1),
		backoff:        initialBackoff,
		confirmTimeout: confirmTimeout,
		now:            time.Now,
	}
}

// PublishItemCreated announces a newly stored item.
func (p *Publisher) PublishItemCreated(ctx context.Context, it *item.Item) error {
	event := Event{
		EventID:      uuid.NewString(),
		EventType:    EventTypeItemCreated,
		EventVersion: eventVersion,
		Timestamp:    p.now().UTC().Format(time.RFC3339),
		Payload: ItemCreatedPayload{
			ItemID:      it.ID,
			UserID:      it.UserID,
			Description: it.Description,
			Cost:        it.Cost.String(),
			URL:         it.URL,
			Date:        it.Date.UTC().Format(time.RFC3339),
		},
	}
	return p.publishWithRetry(ctx, EventTypeItemCreated, event)
}

func (p *Publisher) publishWithRetry(ctx context.Context, routingKey string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	backoff := p.backoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff = min(backoff*2, maxBackoff)
			}
		}

		tag := p.channel.GetNextPublishSeqNo()
		err := p.channel.PublishWithContext(ctx, exchangeName, routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    p.now(),
				MessageId:    event.EventID,
				Body:         body,
				Headers: amqp.Table{
					"event_type":    event.EventType,
					"event_version": event.EventVersion,
				},
			},
		)
		if err != nil {
			lastErr = err
			p.log.Warn("Failed to publish event, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		lastErr = p.awaitConfirm(ctx, tag)
		switch {
		case lastErr == nil:
			p.log.Debug("Event published",
				zap.String("event_id", event.EventID),
				zap.String("routing_key", routingKey),
				zap.Uint64("delivery_tag", tag),
			)
			return nil
		case errors.Is(lastErr, errConfirmsClosed), ctx.Err() != nil:
			return lastErr
		}

		p.log.Warn("Event publish not confirmed, retrying", zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}

	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, lastErr)
}

// awaitConfirm waits for the confirmation of delivery tag, skipping older
// confirmations left over from publishes that timed out.
func (p *Publisher) awaitConfirm(ctx context.Context, tag uint64) error {
	timer := time.NewTimer(p.confirmTimeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-p.confirms:
			if !ok {
				return errConfirmsClosed
			}
			if confirm.DeliveryTag < tag {
				p.log.Debug("Discarding stale confirmation", zap.Uint64("delivery_tag", confirm.DeliveryTag))
				continue
			}
			if confirm.DeliveryTag > tag {
				return fmt.Errorf("confirmation for delivery tag %d while waiting for %d", confirm.DeliveryTag, tag)
			}
			if !confirm.Ack {
				return errNotAcknowledged
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return errConfirmTimeout
		}
	}
}

// IsHealthy reports whether the broker connection is open.
func (p *Publisher) IsHealthy() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	p.log.Info("Publisher closed")
	return nil
}
