package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestWithinTransactionCommits(t *testing.T) {
	tx := &fakeTx{}
	tm := &TxManager{pool: &fakeBeginner{tx: tx}}

	var sawTx bool
	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		sawTx = GetTx(ctx) != nil
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawTx, "tx must be reachable from the callback context")
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestWithinTransactionPropagatesCommitError(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("connection reset")}
	tm := &TxManager{pool: &fakeBeginner{tx: tx}}

	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tx.commitErr)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestWithinTransactionRollsBackOnCallbackError(t *testing.T) {
	tx := &fakeTx{}
	tm := &TxManager{pool: &fakeBeginner{tx: tx}}

	want := errors.New("constraint violation")
	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWithinTransactionBeginError(t *testing.T) {
	tm := &TxManager{pool: &fakeBeginner{beginErr: errors.New("pool closed")}}

	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		t.Fatal("callback must not run when begin fails")
		return nil
	})

	assert.Error(t, err)
}

func TestGetTxAbsent(t *testing.T) {
	assert.Nil(t, GetTx(context.Background()))
}
