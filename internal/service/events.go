package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/queue"
)

var (
	ErrEventBufferFull = errors.New("activity event buffer full")
	ErrPublisherClosed = errors.New("activity publisher closed")
)

// EventPublisher emits activity events.  Publishing is best effort: callers
// log failures and never fail the request because of them.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// NopPublisher drops every event.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ActivityEvent) error { return nil }

const (
	eventBuffer      = 256
	brokerDialTimeout = 2 * time.Second
	sendTimeout      = 2 * time.Second
	maxRetryDelay    = 30 * time.Second
)

// AMQPPublisher publishes persistent JSON messages to the activity queue.
// Publish only enqueues; a single worker goroutine owns the broker
// connection, dials lazily and backs off while the broker is unreachable.
// Events arriving during a backoff window are dropped.
type AMQPPublisher struct {
	url         string
	log         zerolog.Logger
	dialTimeout time.Duration
	now         func() time.Time

	events    chan queue.ActivityEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// owned by the worker
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
	delay   time.Duration
}

func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
	p := newAMQPPublisher(url, log, eventBuffer, brokerDialTimeout)
	go p.run()
	return p
}

func newAMQPPublisher(url string, log zerolog.Logger, buffer int, dialTimeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{
		url:         url,
		log:         log.With().Str("component", "activity-publisher").Logger(),
		dialTimeout: dialTimeout,
		now:         time.Now,
		events:      make(chan queue.ActivityEvent, buffer),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Publish queues ev for delivery without waiting on the broker.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrEventBufferFull
	}
}

// Close stops the worker and releases the broker connection.  Queued events
// that were not yet sent are dropped.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped
	return nil
}

func (p *AMQPPublisher) run() {
	defer close(p.stopped)
	defer p.reset()
	for {
		select {
		case <-p.done:
			return
		case ev := <-p.events:
			if err := p.send(ev); err != nil {
				p.log.Debug().Err(err).Str("event", ev.Type).Uint64("user_id", ev.UserID).Msg("activity event dropped")
			}
		}
	}
}

// send delivers one event, dialing first when there is no open channel.
func (p *AMQPPublisher) send(ev queue.ActivityEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		queue.ActivityQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		p.log.Warn().Err(err).Str("event", ev.Type).Msg("publish failed")
		p.reset()
		return err
	}
	return nil
}

// channel returns an open channel.  While a previous dial failure is backing
// off it fails immediately.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if now := p.now(); now.Before(p.retryAt) {
		return nil, errors.New("rabbitmq unavailable, retrying at " + p.retryAt.Format(time.RFC3339))
	}

	ch, err := p.dial()
	if err != nil {
		p.backoff()
		p.log.Warn().Err(err).Dur("retry_in", p.delay).Msg("rabbitmq unavailable")
		return nil, err
	}
	p.delay = 0
	return ch, nil
}

func (p *AMQPPublisher) dial() (*amqp.Channel, error) {
	// DefaultDial bounds both the TCP connect and the AMQP handshake.
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.ActivityQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) backoff() {
	switch {
	case p.delay == 0:
		p.delay = time.Second
	case p.delay < maxRetryDelay:
		p.delay = min(2*p.delay, maxRetryDelay)
	}
	p.retryAt = p.now().Add(p.delay)
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// publish sends ev with a short deadline detached from request cancellation
// and only logs failures.
func publish(ctx context.Context, pub EventPublisher, log zerolog.Logger, ev queue.ActivityEvent) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		log.Debug().Err(err).Str("event", ev.Type).Uint64("user_id", ev.UserID).Msg("activity event dropped")
	}
}
