package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// Publisher owns a lazily established writer to the enrollment topic. Any
// publish error tears the writer down wholesale; the next operation
// reconnects from scratch. Safe for concurrent use.
type Publisher struct {
	cfg Config

	mu     sync.Mutex
	state  connState
	writer *kafka.Writer
}

func NewPublisher(cfg Config) *Publisher {
	return &Publisher{cfg: cfg}
}

// Publish writes one persistent message, retrying transient broker errors a
// bounded number of times with a fixed backoff. Each retry re-establishes
// the connection from scratch; cached handles are never trusted after an
// error.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	retries := p.cfg.PublishRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.PublishDelay):
			}
		}

		w, err := p.getWriter(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		if err := w.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
			lastErr = err
			p.reset()
			continue
		}

		return nil
	}

	return fmt.Errorf("publish after %d attempts: %w", retries, lastErr)
}

func (p *Publisher) getWriter(ctx context.Context) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateConnected && p.writer != nil {
		return p.writer, nil
	}

	p.state = stateConnecting
	_, transport, err := establish(ctx, p.cfg)
	if err != nil {
		p.state = stateDisconnected
		return nil, err
	}

	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(p.cfg.Brokers...),
		Topic:    p.cfg.Topic,
		Balancer: &kafka.Hash{},
		// RequireAll is the persistence analog: the write is not
		// acknowledged until the topic has it durably.
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            1,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  false,
		AllowAutoTopicCreation: true,
		Transport:              transport,
	}
	p.state = stateConnected

	return p.writer, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		_ = p.writer.Close()
		p.writer = nil
	}
	p.state = stateDisconnected
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = stateDisconnected
	if p.writer == nil {
		return nil
	}
	w := p.writer
	p.writer = nil
	return w.Close()
}
