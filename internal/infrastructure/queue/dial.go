package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Config struct {
	Brokers        []string
	Topic          string
	User           string
	Password       string
	ConnectRetries int
	ConnectDelay   time.Duration
	PublishRetries int
	PublishDelay   time.Duration
}

// attemptResult tags the outcome of a single connection attempt.
type attemptResult struct {
	dialer        *kafka.Dialer
	transport     *kafka.Transport
	authenticated bool
	err           error
}

// establish verifies broker reachability and picks the dial strategy:
// an unauthenticated attempt first, then SASL/PLAIN with the configured
// credentials. The whole probe runs in a bounded retry loop with a fixed
// delay; exhausting it is fatal for the caller.
func establish(ctx context.Context, cfg Config) (*kafka.Dialer, *kafka.Transport, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("no kafka brokers configured")
	}

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(cfg.ConnectDelay):
			}
		}

		res := attempt(ctx, cfg, nil)
		if res.err != nil && cfg.User != "" {
			res = attempt(ctx, cfg, plain.Mechanism{Username: cfg.User, Password: cfg.Password})
		}
		if res.err == nil {
			slog.Info("connected to kafka", "broker", cfg.Brokers[0], "authenticated", res.authenticated, "attempt", i+1)
			return res.dialer, res.transport, nil
		}

		lastErr = res.err
		slog.Warn("kafka connection attempt failed", "attempt", i+1, "retries", retries, "error", res.err)
	}

	return nil, nil, fmt.Errorf("connect to kafka after %d attempts: %w", retries, lastErr)
}

func attempt(ctx context.Context, cfg Config, mech sasl.Mechanism) attemptResult {
	dialer := &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     false, // Force IPv4
		SASLMechanism: mech,
	}

	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return attemptResult{err: err}
	}
	defer conn.Close()

	// A plain TCP dial can succeed against a broker that requires auth;
	// an actual request flushes that out.
	if _, err := conn.ApiVersions(); err != nil {
		return attemptResult{err: err}
	}

	transport := &kafka.Transport{
		DialTimeout: 10 * time.Second,
		SASL:        mech,
	}

	return attemptResult{dialer: dialer, transport: transport, authenticated: mech != nil}
}
