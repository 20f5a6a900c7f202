package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
)

var testAccount = domain.Address("0x1111111111111111111111111111111111111111")

func TestEmitFillsTimestampAndID(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	pub.Emit(context.Background(), Event{
		Action:  ActionMint,
		Account: testAccount,
		Amount:  100,
	})

	events, err := pub.List(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, ActionMint, events[0].Action)
}

func TestAsyncPublisherDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store,
		WithAsyncBuffer(16),
		WithPublisherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	for i := 0; i < 10; i++ {
		pub.Emit(context.Background(), Event{Action: ActionTransfer, Account: testAccount})
	}
	pub.Close()

	events, err := store.ListByAccount(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestTeeAppendsToAllSinks(t *testing.T) {
	a := NewInMemoryStore()
	b := NewInMemoryStore()
	tee := NewTee(a, b)

	require.NoError(t, tee.Append(context.Background(), Event{
		ID:        "evt-1",
		Timestamp: time.Now(),
		Action:    ActionBurn,
		Account:   testAccount,
	}))

	for _, sink := range []*InMemoryStore{a, b} {
		events, err := sink.ListByAccount(context.Background(), testAccount)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	}
}
