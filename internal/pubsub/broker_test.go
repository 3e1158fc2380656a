package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBrokerPublish(t *testing.T) {
	b := NewBroker[[]string]()
	defer b.Close()

	ch1 := b.Subscribe(context.Background())
	ch2 := b.Subscribe(context.Background())
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(OutlineEvent, 3, []string{"main"})

	for _, ch := range []<-chan Event[[]string]{ch1, ch2} {
		ev := receive(t, ch)
		require.Equal(t, OutlineEvent, ev.Type)
		require.Equal(t, uint64(3), ev.Generation)
		require.Equal(t, []string{"main"}, ev.Payload)
		require.False(t, ev.Timestamp.IsZero())
	}
}

func TestBrokerUnsubscribeOnCancel(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()

	ch := b.Subscribe(context.Background())
	b.Publish(HighlightEvent, 1, 1)
	b.Publish(HighlightEvent, 2, 2)

	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case ev := <-ch:
		require.FailNow(t, "unexpected event", "%v", ev)
	default:
	}
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker[int]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()
	b.Publish(ResetEvent, 1, 0)

	_, ok := <-ch
	require.False(t, ok)
	require.Zero(t, b.SubscriberCount())

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok)
}

func TestListenCmd(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener[string](ctx, b)
	b.Publish(OutlineEvent, 1, "x")

	msg := l.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok)
	require.Equal(t, "x", ev.Payload)

	cancel()
	require.Nil(t, l.Listen()())
}
