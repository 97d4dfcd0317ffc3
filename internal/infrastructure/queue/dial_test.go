package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstablishRejectsEmptyBrokerList(t *testing.T) {
	_, _, err := establish(context.Background(), Config{Topic: "enrollments"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kafka brokers")
}

func TestEstablishStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// first attempt fails against the unroutable address, the retry delay
	// then observes the canceled context instead of sleeping
	_, _, err := establish(ctx, Config{
		Brokers:        []string{"127.0.0.1:1"},
		Topic:          "enrollments",
		ConnectRetries: 2,
	})
	require.Error(t, err)
}
