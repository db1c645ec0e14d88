package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrBufferFull is returned by Publish when the outgoing buffer is full
// and the event was dropped.
var ErrBufferFull = errors.New("event buffer full")

const defaultBuffer = 256

// Publisher sends SocialEvents to RabbitMQ.  Publish only enqueues; Run
// owns the broker connection and drains the buffer, reopening the
// connection after a failure.  Events that cannot be delivered are logged
// and dropped.
type Publisher struct {
	url    string
	events chan SocialEvent

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for the broker at url.  No connection
// is made until Run sends the first event.
func NewPublisher(url string, buffer int) *Publisher {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &Publisher{url: url, events: make(chan SocialEvent, buffer)}
}

// Publish enqueues ev for delivery.  It never blocks on the broker.
func (p *Publisher) Publish(_ context.Context, ev SocialEvent) error {
	select {
	case p.events <- ev:
		return nil
	default:
		log.Printf("rabbitmq: buffer full, dropping %s event", ev.Type)
		return ErrBufferFull
	}
}

// Run delivers queued events until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	defer p.close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			if err := p.send(ctx, ev); err != nil {
				log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
				p.close()
			}
		}
	}
}

func (p *Publisher) send(ctx context.Context, ev SocialEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(pubCtx,
		"",              // default exchange
		SocialQueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // store on disk
			Timestamp:    time.Now().UTC(),
			Type:         ev.Type,
			Body:         body,
		})
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.close()
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(SocialQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) close() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
