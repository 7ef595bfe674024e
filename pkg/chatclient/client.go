// Package chatclient is a websocket client for the room server. It keeps the
// transport alive with bounded exponential backoff; Session builds on it to
// restore registration and room membership after every reconnect.
package chatclient

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

// ErrNotConnected is returned by Send while no transport is up
var ErrNotConnected = errors.New("chatclient: not connected")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	URL    string
	Header http.Header
	Dialer *websocket.Dialer

	// MaxRetries is the number of consecutive failed attempts before Failed
	MaxRetries          int
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64

	// Callbacks run on one dispatcher goroutine, in order
	OnStateChange func(prev, next State)
	OnEvent       func(domain.Event)
}

func (o *Options) setDefaults() {
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = time.Second
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = 3 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 1.5
	}
	if o.RandomizationFactor < 0 || o.RandomizationFactor >= 1 {
		o.RandomizationFactor = 0.2
	}
}

// Client maintains one websocket transport and reconnects it on loss.
// It never replays application state; see Session for that.
type Client struct {
	opts Options

	mu      sync.Mutex
	state   State
	gen     uint64 // bumped whenever in-flight dials and readers become stale
	conn    *websocket.Conn
	cancel  context.CancelFunc
	timer   *time.Timer
	retries int
	backoff *backoff.ExponentialBackOff

	writeMu sync.Mutex
	events  notifier
}

// New creates a disconnected client
func New(opts Options) *Client {
	opts.setDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval
	b.Multiplier = opts.Multiplier
	b.RandomizationFactor = opts.RandomizationFactor
	b.MaxElapsedTime = 0
	b.Reset()

	return &Client{opts: opts, backoff: b}
}

// State returns the current lifecycle state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts dialing. It is a no-op unless the client is Disconnected
// or Failed.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Disconnected && c.state != Failed {
		return
	}
	c.retries = 0
	c.backoff.Reset()
	c.startDialLocked(Connecting)
}

// Reconnect drops any transport or pending retry and dials immediately
func (c *Client) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.retries = 0
	c.backoff.Reset()
	c.startDialLocked(Connecting)
}

// Close stops everything. Nothing reconnects until Connect is called again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.setStateLocked(Disconnected)
	return nil
}

// Send writes one command frame
func (c *Client) Send(cmd domain.Command) error {
	data, err := domain.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// teardownLocked invalidates the current generation and releases its
// transport, dial and timer
func (c *Client) teardownLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// startDialLocked begins an attempt. Automatic retries stay Reconnecting.
func (c *Client) startDialLocked(state State) {
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.setStateLocked(state)

	go c.dial(ctx, gen)
}

func (c *Client) dial(ctx context.Context, gen uint64) {
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, c.opts.Header)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		if conn != nil {
			conn.Close()
		}
		return
	}
	c.cancel = nil

	if err != nil {
		c.retries++
		log.Printf("[client] dial attempt %d failed: %v", c.retries, err)
		c.retryLocked()
		return
	}

	c.conn = conn
	c.retries = 0
	c.backoff.Reset()
	c.setStateLocked(Connected)

	go c.readLoop(conn, gen)
}

func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.dropped(gen, err)
			return
		}

		ev, err := domain.DecodeEvent(data)
		if err != nil {
			log.Printf("[client] ignoring frame: %v", err)
			continue
		}
		if c.opts.OnEvent != nil {
			c.events.push(func() { c.opts.OnEvent(ev) })
		}
	}
}

// dropped handles loss of a live transport
func (c *Client) dropped(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	log.Printf("[client] connection lost: %v", err)
	c.conn.Close()
	c.conn = nil
	c.retryLocked()
}

// retryLocked schedules the next attempt, or gives up after MaxRetries
// consecutive failures
func (c *Client) retryLocked() {
	if c.retries >= c.opts.MaxRetries {
		c.gen++
		c.setStateLocked(Failed)
		return
	}

	c.gen++
	gen := c.gen
	c.setStateLocked(Reconnecting)

	delay := c.backoff.NextBackOff()
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		c.timer = nil
		c.startDialLocked(Reconnecting)
	})
}

func (c *Client) setStateLocked(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.opts.OnStateChange != nil {
		c.events.push(func() { c.opts.OnStateChange(prev, next) })
	}
}
