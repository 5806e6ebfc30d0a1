package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingForwarder struct {
	got []string
	err error
}

func (f *recordingForwarder) Publish(_ context.Context, e Event) error {
	f.got = append(f.got, e.EventType())
	return f.err
}

func TestBus_EmitReachesSubscriberAndForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fwd := &recordingForwarder{}
	bus := NewBus("state.changed", fwd)
	defer bus.Close()

	feed, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Emit(ctx, New(TypeAuthChanged, map[string]interface{}{"is_authenticated": true})))

	select {
	case env := <-feed:
		assert.Equal(t, TypeAuthChanged, env.Type)
		assert.Equal(t, true, env.Data["is_authenticated"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, []string{TypeAuthChanged}, fwd.got)
}

func TestBus_ForwarderErrorIsReturned(t *testing.T) {
	bus := NewBus("state.changed", &recordingForwarder{err: errors.New("nats down")})
	defer bus.Close()

	err := bus.Emit(context.Background(), New(TypeChatChanged, nil))
	assert.EqualError(t, err, "nats down")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Emit(context.Background(), New(TypeChatChanged, nil))
	_ = r.Emit(context.Background(), New(TypeChatMessage, nil))
	assert.Equal(t, []string{TypeChatChanged, TypeChatMessage}, r.Types())
}
