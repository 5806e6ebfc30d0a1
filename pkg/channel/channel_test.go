package channel

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduled struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (s *scheduled) Stop() bool {
	s.stopped = true
	return true
}

// fakeScheduler records every armed timer and fires them only on demand.
type fakeScheduler struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending []*scheduled
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &scheduled{delay: d, fn: f}
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, t)
	return t
}

func (s *fakeScheduler) runNext() bool {
	s.mu.Lock()
	var next *scheduled
	for len(s.pending) > 0 && next == nil {
		if !s.pending[0].stopped {
			next = s.pending[0]
		}
		s.pending = s.pending[1:]
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

func (s *fakeScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pending {
		if !p.stopped {
			n++
		}
	}
	return n
}

func (s *fakeScheduler) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type fakeConn struct {
	incoming  chan []byte
	mu        sync.Mutex
	written   []string
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan []byte, 8), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case d, ok := <-c.incoming:
		if !ok {
			return nil, io.EOF
		}
		return d, nil
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

// fakeDialer fails the first failures dials and then hands out conns.
type fakeDialer struct {
	mu       sync.Mutex
	calls    int
	failures int
	conns    []*fakeConn
}

func (d *fakeDialer) Dial(context.Context, string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.failures < 0 || d.calls <= d.failures {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestChannel_BackoffGivesUpAfterMaxAttempts(t *testing.T) {
	sched := &fakeScheduler{}
	dialer := &fakeDialer{failures: -1}
	var states []State
	ch := New(Options{
		URL:           "ws://backend/ws/chat/s1",
		Dialer:        dialer,
		MaxAttempts:   5,
		BaseDelay:     time.Second,
		AfterFunc:     sched.AfterFunc,
		OnStateChange: func(s State) { states = append(states, s) },
	})

	ch.Open()
	for sched.runNext() {
	}

	assert.Equal(t, 5, dialer.callCount(), "no sixth attempt")
	assert.Equal(t, []time.Duration{0, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}, sched.recorded())
	assert.Equal(t, StateClosed, ch.State())
	assert.Equal(t, StateClosed, states[len(states)-1])
	assert.ErrorIs(t, ch.Send([]byte(`{}`)), ErrNotOpen)
}

func TestChannel_BackoffScalesWithBaseDelay(t *testing.T) {
	tests := []struct {
		name        string
		baseDelay   time.Duration
		maxAttempts int
		want        []time.Duration
	}{
		{
			name:        "half second base",
			baseDelay:   500 * time.Millisecond,
			maxAttempts: 4,
			want:        []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second},
		},
		{
			name:        "single retry",
			baseDelay:   3 * time.Second,
			maxAttempts: 2,
			want:        []time.Duration{0, 6 * time.Second},
		},
		{
			name:        "default base delay",
			maxAttempts: 3,
			want:        []time.Duration{0, 2 * time.Second, 4 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &fakeScheduler{}
			ch := New(Options{
				Dialer:      &fakeDialer{failures: -1},
				MaxAttempts: tt.maxAttempts,
				BaseDelay:   tt.baseDelay,
				AfterFunc:   sched.AfterFunc,
			})

			ch.Open()
			for sched.runNext() {
			}

			assert.Equal(t, tt.want, sched.recorded())
			assert.Equal(t, StateClosed, ch.State())
		})
	}
}

func TestChannel_SuccessfulOpenResetsAttempts(t *testing.T) {
	sched := &fakeScheduler{}
	dialer := &fakeDialer{failures: 2}
	ch := New(Options{
		URL:       "ws://backend/ws/chat/s1",
		Dialer:    dialer,
		AfterFunc: sched.AfterFunc,
		OnOpen: func(c *Channel) {
			_ = c.SendJSON(map[string]string{"type": "auth", "token": "tok"})
		},
	})
	defer ch.Close()

	ch.Open()
	sched.runNext() // fails
	sched.runNext() // fails
	sched.runNext() // connects

	require.Equal(t, StateOpen, ch.State())
	assert.Equal(t, 0, ch.Attempts())
	require.Len(t, dialer.conns, 1)
	assert.Equal(t, []string{`{"token":"tok","type":"auth"}`}, dialer.conns[0].frames())

	// Server drops the connection: the next retry starts again at 2s.
	close(dialer.conns[0].incoming)
	require.Eventually(t, func() bool { return sched.pendingCount() == 1 }, time.Second, 5*time.Millisecond)

	delays := sched.recorded()
	assert.Equal(t, 2*time.Second, delays[len(delays)-1])
	assert.Equal(t, StateConnecting, ch.State())
}

func TestChannel_DeliversInboundFrames(t *testing.T) {
	sched := &fakeScheduler{}
	dialer := &fakeDialer{}
	got := make(chan string, 1)
	ch := New(Options{
		Dialer:    dialer,
		AfterFunc: sched.AfterFunc,
		OnMessage: func(data []byte) { got <- string(data) },
	})
	defer ch.Close()

	ch.Open()
	sched.runNext()
	dialer.conns[0].incoming <- []byte(`{"type":"new_message"}`)

	select {
	case frame := <-got:
		assert.Equal(t, `{"type":"new_message"}`, frame)
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestChannel_CloseIsTerminalAndIdempotent(t *testing.T) {
	sched := &fakeScheduler{}
	dialer := &fakeDialer{}
	ch := New(Options{Dialer: dialer, AfterFunc: sched.AfterFunc})

	ch.Open()
	sched.runNext()
	require.Equal(t, StateOpen, ch.State())

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	assert.Equal(t, StateClosed, ch.State())
	select {
	case <-dialer.conns[0].closed:
	default:
		t.Fatal("connection not closed")
	}

	// The read loop sees the closed conn but must not reconnect.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, sched.pendingCount())

	ch.Open()
	assert.False(t, sched.runNext())
	assert.Equal(t, 1, dialer.callCount())
}

func TestChannel_CloseCancelsPendingRetry(t *testing.T) {
	sched := &fakeScheduler{}
	dialer := &fakeDialer{failures: -1}
	ch := New(Options{Dialer: dialer, AfterFunc: sched.AfterFunc})

	ch.Open()
	sched.runNext()
	require.Equal(t, 1, sched.pendingCount())

	require.NoError(t, ch.Close())
	assert.Equal(t, 0, sched.pendingCount())
	assert.False(t, sched.runNext())
	assert.Equal(t, 1, dialer.callCount())
}
