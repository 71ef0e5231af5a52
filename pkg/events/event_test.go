package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal(t *testing.T) {
	e := New(TypeEssaysIngested, map[string]interface{}{"processed": float64(42)})

	data, err := Marshal(e)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, TypeEssaysIngested, back.EventType())
	assert.Equal(t, float64(42), back.Payload()["processed"])
	assert.WithinDuration(t, e.Timestamp(), back.Timestamp(), time.Millisecond)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)
}

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus("essay-events", 1)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, New(TypeEssayScored, map[string]interface{}{"fallback": false})))

	select {
	case msg := <-messages:
		assert.Equal(t, TypeEssayScored, msg.Metadata.Get("event_type"))
		e, err := Unmarshal(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, false, e.Payload()["fallback"])
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}
