package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishFanout(t *testing.T) {
	t.Parallel()
	bus := New()
	a, unsubA := bus.Subscribe(2)
	b, unsubB := bus.Subscribe(2)
	defer unsubA()
	defer unsubB()

	bus.Publish(Event{Type: TypeTransition, Data: Transition{Rule: "lights", Active: true}})

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		require.Equal(t, TypeTransition, e.Type)
		require.False(t, e.Time.IsZero(), "publish stamps the time")
		require.Equal(t, Transition{Rule: "lights", Active: true}, e.Data)
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	t.Parallel()
	bus := New()
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	bus.Publish(Event{Type: "one"})
	bus.Publish(Event{Type: "two"}) // buffer full, dropped

	require.Equal(t, "one", (<-ch).Type)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %q", e.Type)
	default:
	}
}

func TestUnsubscribeCloses(t *testing.T) {
	t.Parallel()
	bus := New()
	ch, unsub := bus.Subscribe(0)
	unsub()
	unsub() // idempotent
	_, ok := <-ch
	require.False(t, ok)
	bus.Publish(Event{Type: "after"})
}
