package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pgxpool "github.com/jackc/pgx/v5/pgxpool"
	go_redis "github.com/redis/go-redis/v9"

	"github.com/lksmaxx/enroll-api/internal/config"
	"github.com/lksmaxx/enroll-api/internal/infrastructure/postgres"
	"github.com/lksmaxx/enroll-api/internal/infrastructure/queue"
	"github.com/lksmaxx/enroll-api/internal/infrastructure/redis"
)

type Factory struct {
	cfg       *config.Config
	pgPool    *pgxpool.Pool
	redisCli  *go_redis.Client
	publisher *queue.Publisher
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg: cfg,
	}
}

func (f *Factory) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if f.pgPool != nil {
		return f.pgPool, nil
	}

	var pool *pgxpool.Pool
	var err error

	// Retry connection up to 5 times
	for i := 0; i < 5; i++ {
		pool, err = postgres.NewClient(ctx, postgres.Config{
			Host:     f.cfg.Postgres.Host,
			Port:     f.cfg.Postgres.Port,
			User:     f.cfg.Postgres.User,
			Password: f.cfg.Postgres.Password,
			DBName:   f.cfg.Postgres.DBName,
		})
		if err == nil {
			break
		}
		slog.Warn("failed to connect to postgres, retrying in 2s", "attempt", i+1, "retries", 5, "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to init postgres after retries: %w", err)
	}

	f.pgPool = pool
	return pool, nil
}

func (f *Factory) Redis(ctx context.Context) (*go_redis.Client, error) {
	if f.redisCli != nil {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr: f.cfg.Redis.Addr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

func (f *Factory) QueuePublisher() *queue.Publisher {
	if f.publisher != nil {
		return f.publisher
	}

	f.publisher = queue.NewPublisher(f.queueConfig())
	return f.publisher
}

func (f *Factory) QueueConsumer(ctx context.Context) (*queue.Consumer, error) {
	return queue.NewConsumer(ctx, queue.ConsumerConfig{
		Config:  f.queueConfig(),
		GroupID: f.cfg.Kafka.GroupID,
	})
}

func (f *Factory) queueConfig() queue.Config {
	return queue.Config{
		Brokers:        f.cfg.Kafka.Brokers,
		Topic:          f.cfg.Kafka.Topic,
		User:           f.cfg.Kafka.User,
		Password:       f.cfg.Kafka.Password,
		ConnectRetries: f.cfg.Kafka.ConnectRetries,
		ConnectDelay:   f.cfg.Kafka.ConnectDelay,
		PublishRetries: f.cfg.Kafka.PublishRetries,
		PublishDelay:   f.cfg.Kafka.PublishDelay,
	}
}

func (f *Factory) Close() {
	if f.publisher != nil {
		f.publisher.Close()
	}
	if f.pgPool != nil {
		f.pgPool.Close()
	}
	if f.redisCli != nil {
		f.redisCli.Close()
	}
}
