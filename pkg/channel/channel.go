// Package channel implements a reconnecting duplex message channel with
// capped exponential backoff.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var ErrNotOpen = errors.New("channel: not open")

type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Conn is one live connection. Implementations must allow one concurrent
// reader and one concurrent writer.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Logger matches the subset of the application logger the channel needs.
type Logger interface {
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

type Timer interface {
	Stop() bool
}

type Options struct {
	URL         string
	Dialer      Dialer
	MaxAttempts int
	BaseDelay   time.Duration

	// OnOpen runs after every successful connect, before any inbound frame
	// is delivered.
	OnOpen        func(c *Channel)
	OnMessage     func(data []byte)
	OnStateChange func(State)

	Logger    Logger
	AfterFunc func(d time.Duration, f func()) Timer
}

type Channel struct {
	opts Options

	mu         sync.Mutex
	state      State
	conn       Conn
	attempts   int
	backoff    *backoff.ExponentialBackOff
	closed     bool
	timer      Timer
	cancelDial context.CancelFunc

	writeMu sync.Mutex
}

const logModule = "Channel"

func New(opts Options) *Channel {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if opts.OnMessage == nil {
		opts.OnMessage = func([]byte) {}
	}
	return &Channel{
		opts: opts,
		backoff: &backoff.ExponentialBackOff{
			InitialInterval:     2 * opts.BaseDelay,
			Multiplier:          2,
			RandomizationFactor: 0,
			MaxInterval:         opts.BaseDelay << opts.MaxAttempts,
		},
	}
}

// Open starts connecting in the background. It is a no-op on a channel that
// is already connecting, open or explicitly closed.
func (c *Channel) Open() {
	c.mu.Lock()
	if c.closed || c.state != StateClosed || c.timer != nil {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.attempts = 0
	c.backoff.Reset()
	c.mu.Unlock()

	c.notify(StateConnecting)
	c.schedule(0)
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts is the number of consecutive failures since the last successful open.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Send writes one frame. It never queues: if the channel is not open the
// frame is dropped and ErrNotOpen returned.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || conn == nil {
		return ErrNotOpen
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(data); err != nil {
		return fmt.Errorf("channel write: %w", err)
	}
	return nil
}

func (c *Channel) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("channel encode: %w", err)
	}
	return c.Send(data)
}

// Close tears the channel down for good: pending reconnects are cancelled
// and the live connection, if any, is closed. Safe to call repeatedly.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	prev := c.state
	c.state = StateClosed
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	if prev != StateClosed {
		c.notify(StateClosed)
	}
	return err
}

// schedule arms the next dial. AfterFunc must not run f synchronously.
func (c *Channel) schedule(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.timer = c.opts.AfterFunc(delay, c.dial)
}

func (c *Channel) dial() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.timer = nil
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	c.cancelDial = cancel
	c.mu.Unlock()

	conn, err := c.opts.Dialer.Dial(ctx, c.opts.URL)

	c.mu.Lock()
	c.cancelDial = nil
	cancel()
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.fail(err)
		return
	}
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.backoff.Reset()
	c.mu.Unlock()

	c.info("Channel connected", map[string]interface{}{"url": c.opts.URL})
	c.notify(StateOpen)
	if c.opts.OnOpen != nil {
		c.opts.OnOpen(c)
	}
	go c.readLoop(conn)
}

func (c *Channel) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn && !c.closed
			if current {
				c.conn = nil
			}
			c.mu.Unlock()
			if current {
				_ = conn.Close()
				c.fail(err)
			}
			return
		}
		c.opts.OnMessage(data)
	}
}

// fail records one failed connect or unexpected disconnect and either
// schedules the next attempt or gives up.
func (c *Channel) fail(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempts := c.attempts
	if attempts >= c.opts.MaxAttempts {
		c.state = StateClosed
		c.mu.Unlock()

		c.warn("Channel gave up reconnecting", map[string]interface{}{
			"url": c.opts.URL, "attempts": attempts, "error": cause.Error(),
		})
		c.notify(StateClosed)
		return
	}
	c.state = StateConnecting
	delay := c.backoff.NextBackOff()
	c.mu.Unlock()

	c.warn("Channel disconnected, retrying", map[string]interface{}{
		"url": c.opts.URL, "attempt": attempts, "delay": delay.String(), "error": cause.Error(),
	})
	c.notify(StateConnecting)
	c.schedule(delay)
}

func (c *Channel) notify(s State) {
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}

func (c *Channel) info(msg string, details map[string]interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Info(logModule, msg, details)
	}
}

func (c *Channel) warn(msg string, details map[string]interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(logModule, msg, details)
	}
}
