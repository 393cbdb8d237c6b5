package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

func drain(t *testing.T, sub *Subscription, n int) []protocol.Notification {
	t.Helper()
	out := make([]protocol.Notification, 0, n)
	for i := 0; i < n; i++ {
		select {
		case notif, ok := <-sub.C():
			require.True(t, ok, "channel closed early")
			out = append(out, notif)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for notification %d of %d", i+1, n)
		}
	}
	return out
}

func TestHub_FanOutSameOrder(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Cancel()
	defer b.Cancel()

	states := []protocol.State{protocol.StatePlaying, protocol.StatePaused, protocol.StatePlaying, protocol.StateStopped}
	for _, s := range states {
		hub.Publish(protocol.NewStatusNotification(s))
	}

	got := drain(t, a, len(states))
	gotB := drain(t, b, len(states))
	for i, s := range states {
		assert.Equal(t, s, got[i].Status)
		assert.Equal(t, s, gotB[i].Status)
		// Both subscribers see identical sequence numbers in identical order.
		assert.Equal(t, got[i].SequenceNo, gotB[i].SequenceNo)
	}
}

func TestHub_SequenceNumbersMonotonic(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Cancel()

	for i := 0; i < 10; i++ {
		hub.Publish(protocol.NewStatusNotification(protocol.StatePlaying))
	}

	got := drain(t, sub, 10)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].SequenceNo+1, got[i].SequenceNo)
	}
}

func TestHub_LateSubscriberMissesEarlier(t *testing.T) {
	hub := NewHub()

	hub.Publish(protocol.NewStatusNotification(protocol.StatePlaying))
	hub.Publish(protocol.NewStatusNotification(protocol.StatePaused))

	sub := hub.Subscribe()
	defer sub.Cancel()

	hub.Publish(protocol.NewStatusNotification(protocol.StateStopped))

	got := drain(t, sub, 1)
	assert.Equal(t, protocol.StateStopped, got[0].Status)

	// Nothing else is pending: no replay of pre-subscription notifications.
	select {
	case n := <-sub.C():
		t.Fatalf("unexpected notification %v", n)
	default:
	}
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	hub := NewHubWithBuffer(2)
	sub := hub.Subscribe()
	defer sub.Cancel()

	for i := 0; i < 5; i++ {
		hub.Publish(protocol.NewStatusNotification(protocol.StatePlaying))
	}

	// Only the first two fit; the rest were dropped, not blocked on.
	got := drain(t, sub, 2)
	assert.Equal(t, uint64(1), got[0].SequenceNo)
	assert.Equal(t, uint64(2), got[1].SequenceNo)
	select {
	case n := <-sub.C():
		t.Fatalf("unexpected notification %v", n)
	default:
	}

	// The gap is visible to a healthy subscriber through sequence numbers.
	fresh := hub.Subscribe()
	defer fresh.Cancel()
	hub.Publish(protocol.NewStatusNotification(protocol.StateStopped))
	next := drain(t, fresh, 1)
	assert.Equal(t, uint64(6), next[0].SequenceNo)
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, ok := <-sub.C()
	assert.False(t, ok, "channel should be closed after cancel")

	// Publishing to a hub with no subscribers is fine.
	hub.Publish(protocol.NewStatusNotification(protocol.StatePlaying))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()

	hub.Close()
	hub.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Subscribing after close yields an already closed channel.
	late := hub.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)
}

func TestHub_NextSequenceNo(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Cancel()

	first := hub.NextSequenceNo()
	second := hub.NextSequenceNo()
	assert.Equal(t, first+1, second)

	// A publish continues the same sequence.
	hub.Publish(protocol.NewStatusNotification(protocol.StatePlaying))
	got := drain(t, sub, 1)
	assert.Equal(t, second+1, got[0].SequenceNo)
}
