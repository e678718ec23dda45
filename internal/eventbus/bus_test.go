package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendToCore_Delivers(t *testing.T) {
	eb := NewEventBus()
	require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "hi"}))

	select {
	case event := <-eb.UIToCore():
		msg, ok := event.(SendMessageEvent)
		require.True(t, ok)
		require.Equal(t, "hi", msg.Message)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSendToUI_Delivers(t *testing.T) {
	eb := NewEventBus()
	require.NoError(t, eb.SendToUI(StateUpdateEvent{Notice: "ready"}))

	select {
	case event := <-eb.CoreToUI():
		state, ok := event.(StateUpdateEvent)
		require.True(t, ok)
		require.Equal(t, "ready", state.Notice)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSendToCore_FullChannel(t *testing.T) {
	eb := NewEventBus()
	for i := 0; i < 100; i++ {
		require.NoError(t, eb.SendToCore(SendMessageEvent{}))
	}
	require.Error(t, eb.SendToCore(SendMessageEvent{}))
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	require.False(t, cb.IsOpen())
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	require.True(t, cb.IsOpen())

	cb.RecordSuccess()
	require.False(t, cb.IsOpen())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	require.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	require.False(t, cb.IsOpen(), "breaker should allow a trial send after the reset timeout")
}
