package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_DeliversByTopic(t *testing.T) {
	bus := NewMemoryBus()

	var got []Event
	bus.Subscribe(TopicPaymentProcessed, func(ctx context.Context, e Event) {
		got = append(got, e)
	})

	bus.Publish(context.Background(), Event{Topic: TopicPaymentProcessed, Payload: PaymentProcessed{StudentID: 3}})
	bus.Publish(context.Background(), Event{Topic: TopicSessionExpired})

	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].Payload.(PaymentProcessed).StudentID)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus()

	calls := 0
	unsubscribe := bus.Subscribe(TopicNotification, func(ctx context.Context, e Event) { calls++ })

	Notify(context.Background(), bus, LevelInfo, "saved")
	unsubscribe()
	Notify(context.Background(), bus, LevelInfo, "saved again")

	assert.Equal(t, 1, calls)
}

func TestMemoryBus_RecoversHandlerPanic(t *testing.T) {
	bus := NewMemoryBus()

	delivered := false
	bus.Subscribe(TopicNotification, func(ctx context.Context, e Event) { panic("broken subscriber") })
	bus.Subscribe(TopicNotification, func(ctx context.Context, e Event) { delivered = true })

	assert.NotPanics(t, func() {
		Notify(context.Background(), bus, LevelError, "failed")
	})
	assert.True(t, delivered)
}

func TestNotify_NilBus(t *testing.T) {
	assert.NotPanics(t, func() {
		Notify(context.Background(), nil, LevelWarning, "ignored")
	})
}
