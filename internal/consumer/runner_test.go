package consumer

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
)

type fakeQueue struct {
	msgs    []kafka.Message
	commits []kafka.Message
	fetched int
	cancel  context.CancelFunc
}

func (q *fakeQueue) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if q.fetched < len(q.msgs) {
		m := q.msgs[q.fetched]
		q.fetched++
		return m, nil
	}
	q.cancel()
	return kafka.Message{}, context.Canceled
}

func (q *fakeQueue) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	q.commits = append(q.commits, msgs...)
	return nil
}

func TestRunnerCommitsAfterProcessing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := pendingStore(t, "e1")
	q := &fakeQueue{
		msgs: []kafka.Message{
			{Value: taskPayload(t, "e1")},
			{Value: []byte("{broken")}, // poison: committed without work
			{Value: taskPayload(t, "ghost")}, // orphan: committed without work
		},
		cancel: cancel,
	}

	r := NewRunner(q, NewProcessor(store, testFloor))
	require.NoError(t, r.Run(ctx))

	assert.Len(t, q.commits, 3, "every handled message is committed")

	rec, err := store.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusProcessed, rec.Status)
}

func TestRunnerStopsOnShutdownMidMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	store := pendingStore(t, "e1")
	q := &fakeQueue{
		msgs:   []kafka.Message{{Value: taskPayload(t, "e1")}},
		cancel: cancel,
	}

	// cancel before the floor elapses so processing is interrupted
	cancel()

	r := NewRunner(q, NewProcessor(store, testFloor))
	require.NoError(t, r.Run(ctx))

	// the interrupted message stays uncommitted for redelivery
	assert.Empty(t, q.commits)

	rec, err := store.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPending, rec.Status)
}
