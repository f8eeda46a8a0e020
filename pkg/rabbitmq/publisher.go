package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"meeting-backend/config"
	"meeting-backend/dto"
)

const (
	EventsExchange    = "meeting_events"
	RecordingExchange = "recording_exchange"

	PostProcessRoutingKey = "recording.postprocess.request"
)

// Publisher fans meeting events out to the signaling layer and hands stopped
// recordings to the post-processing worker. A single channel is shared behind
// a mutex; it is reopened when the broker drops it.
type Publisher struct {
	conn *amqp.Connection
	cfg  *config.RabbitMQ

	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) (*Publisher, error) {
	p := &Publisher{conn: conn, cfg: cfg}

	ch, err := p.channel()
	if err != nil {
		return nil, err
	}

	for _, exchange := range []string{EventsExchange, RecordingExchange} {
		if err := ch.ExchangeDeclare(exchange, cfg.Kind, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
	}
	return p, nil
}

func (p *Publisher) SendToMeeting(ctx context.Context, meetingID uuid.UUID, event dto.Event) error {
	return p.publish(ctx, EventsExchange, "meeting."+meetingID.String(), event)
}

func (p *Publisher) SendToUser(ctx context.Context, userID uuid.UUID, event dto.Event) error {
	return p.publish(ctx, EventsExchange, "user."+userID.String(), event)
}

func (p *Publisher) Submit(ctx context.Context, message dto.RecordingPostProcessMessage) error {
	return p.publish(ctx, RecordingExchange, PostProcessRoutingKey, message)
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("exchange", exchange).
		Str("routing_key", routingKey).
		Msg("message published")
	return nil
}

// channel returns the shared channel, reopening it after a broker-side close.
// Callers must hold p.mu except during construction.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}
