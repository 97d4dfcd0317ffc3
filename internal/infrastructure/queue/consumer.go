package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type ConsumerConfig struct {
	Config
	GroupID string
}

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer connects to the broker (bounded retry, dual dial strategy) and
// opens a sequential reader on the enrollment topic. QueueCapacity of one
// keeps at most a single in-flight message, the prefetch=1 contract the
// worker relies on.
func NewConsumer(ctx context.Context, cfg ConsumerConfig) (*Consumer, error) {
	dialer, _, err := establish(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("open consumer: %w", err)
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:       cfg.Brokers,
		Topic:         cfg.Topic,
		GroupID:       cfg.GroupID,
		MinBytes:      1, // Process immediately
		MaxBytes:      10e6,
		MaxWait:       1 * time.Second,
		QueueCapacity: 1,
		Dialer:        dialer,
		StartOffset:   kafka.FirstOffset,
	})

	return &Consumer{reader: r}, nil
}

func (c *Consumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *Consumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
