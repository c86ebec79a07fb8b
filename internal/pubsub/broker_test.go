package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker(t *testing.T) {
	t.Parallel()

	t.Run("should deliver events to every subscriber", func(t *testing.T) {
		t.Parallel()
		b := NewBroker[string]()
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		first := b.Subscribe(ctx)
		second := b.Subscribe(ctx)
		assert.Equal(t, 2, b.GetSubscriberCount())

		b.Publish(UpdatedEvent, "entry-1")
		for _, ch := range []<-chan Event[string]{first, second} {
			ev := <-ch
			assert.Equal(t, UpdatedEvent, ev.Type)
			assert.Equal(t, "entry-1", ev.Payload)
		}
	})

	t.Run("should close the channel when the context ends", func(t *testing.T) {
		t.Parallel()
		b := NewBroker[int]()
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		ch := b.Subscribe(ctx)
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("channel not closed")
		}
		require.Eventually(t, func() bool { return b.GetSubscriberCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("should drop events for full subscribers", func(t *testing.T) {
		t.Parallel()
		b := NewBrokerWithOptions[int](1)
		defer b.Shutdown()
		ch := b.Subscribe(context.Background())
		b.Publish(CreatedEvent, 1)
		b.Publish(CreatedEvent, 2)

		ev := <-ch
		assert.Equal(t, 1, ev.Payload)
		select {
		case ev := <-ch:
			t.Fatalf("unexpected event %v", ev)
		default:
		}
	})

	t.Run("should return closed channels after shutdown", func(t *testing.T) {
		t.Parallel()
		b := NewBroker[int]()
		b.Shutdown()
		b.Shutdown()
		_, ok := <-b.Subscribe(context.Background())
		assert.False(t, ok)
		b.Publish(DeletedEvent, 1)
	})
}
