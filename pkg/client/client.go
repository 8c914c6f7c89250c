package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// Connection and request defaults.
const (
	DefaultRequestTimeout    = 60 * time.Second
	DefaultReconnectInterval = 3 * time.Second
)

// Options configures a Client.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://host:8080/bull-admin.
	URL string

	// Header is sent with the upgrade handshake, for authorization schemes
	// carried in headers or cookies.
	Header http.Header

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// RequestTimeout bounds each request once it has actually been
	// transmitted. A request queued while disconnected is not on the clock
	// until the reconnect resends it. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// ReconnectInterval is the fixed delay between connection attempts.
	// Retries are unbounded. Defaults to DefaultReconnectInterval.
	ReconnectInterval time.Duration

	// OnBusyChange, when set, observes the busy flag: true while at least
	// one foreground request is pending, false when the last one settles.
	// Background requests never affect it.
	OnBusyChange func(busy bool)

	// Logger defaults to a text logger at info level.
	Logger log.Logger
}

// result settles one pending request.
type result struct {
	res *api.Response
	err error
}

// pendingRequest is one in-flight exchange. The envelope is retained so a
// reconnect can resend it with the same id; timer is armed once, at first
// transmission.
type pendingRequest struct {
	env        api.Request
	background bool
	ch         chan result
	timer      *time.Timer
}

// Client is the socket facade. It is safe for concurrent use; requests may be
// issued before the first connection is established and while disconnected,
// and are transmitted as soon as a connection is available.
type Client struct {
	url     string
	header  http.Header
	dialer  *websocket.Dialer
	timeout time.Duration
	backoff time.Duration
	onBusy  func(bool)
	logger  log.Logger
	subs    *registry

	mu        sync.Mutex
	ws        *websocket.Conn
	connected chan struct{}
	fg        map[string]*pendingRequest
	bg        map[string]*pendingRequest
	busy      bool
	closed    bool

	writeMu sync.Mutex
}

// New creates a disconnected Client. Call Connect to start the connection
// manager.
func New(opts Options) *Client {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	backoff := opts.ReconnectInterval
	if backoff <= 0 {
		backoff = DefaultReconnectInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Client{
		url:       opts.URL,
		header:    opts.Header,
		dialer:    dialer,
		timeout:   timeout,
		backoff:   backoff,
		onBusy:    opts.OnBusyChange,
		logger:    logger.WithComponent("client"),
		subs:      newRegistry(),
		connected: make(chan struct{}),
		fg:        map[string]*pendingRequest{},
		bg:        map[string]*pendingRequest{},
	}
}

// Connect launches the connection manager: dial, serve the read loop, and on
// disconnect wait the reconnect interval and dial again, until ctx is
// cancelled or the client is closed. Requests pending across a reconnect are
// resent with their original ids.
func (c *Client) Connect(ctx context.Context) {
	go c.run(ctx)
}

// WaitConnected blocks until the connection is established, ctx is done, or
// the client is closed.
func (c *Client) WaitConnected(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.ws != nil {
			c.mu.Unlock()
			return nil
		}
		ch := c.connected
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close shuts the facade down: the connection is closed, reconnection stops,
// and every pending request settles with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws := c.ws
	c.ws = nil
	settled := make([]*pendingRequest, 0, len(c.fg)+len(c.bg))
	for _, p := range c.fg {
		settled = append(settled, p)
	}
	for _, p := range c.bg {
		settled = append(settled, p)
	}
	c.fg = map[string]*pendingRequest{}
	c.bg = map[string]*pendingRequest{}
	notify, busy := c.updateBusyLocked()
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
	for _, p := range settled {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.ch <- result{err: ErrClosed}
	}
	if notify {
		c.notifyBusy(busy)
	}
	return nil
}

// Subscribe registers a notification handler for one event type and returns
// its unsubscribe closure. Notifications emitted before the subscription are
// not replayed.
func (c *Client) Subscribe(event string, handler Handler) (unsubscribe func()) {
	return c.subs.add(event, handler)
}

// Do performs a foreground request and blocks until it settles. The busy flag
// is raised while it is pending. A non-success response is returned as *Error.
func (c *Client) Do(ctx context.Context, method, url string, body any) (*api.Response, error) {
	return c.do(ctx, method, url, body, false)
}

// DoBackground performs a request without touching the busy flag, for
// periodic refreshes that should not surface a spinner.
func (c *Client) DoBackground(ctx context.Context, method, url string, body any) (*api.Response, error) {
	return c.do(ctx, method, url, body, true)
}

func (c *Client) do(ctx context.Context, method, url string, body any, background bool) (*api.Response, error) {
	var raw json.RawMessage
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	p := &pendingRequest{
		env:        api.Request{ID: id.Token(), Method: method, URL: url, Body: raw},
		background: background,
		ch:         make(chan result, 1),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pool(background)[p.env.ID] = p
	notify, busy := c.updateBusyLocked()
	ws := c.ws
	c.mu.Unlock()

	if notify {
		c.notifyBusy(busy)
	}
	if ws != nil {
		c.transmit(ws, p)
	}

	select {
	case r := <-p.ch:
		return settled(r)
	case <-ctx.Done():
		if taken, ok := c.take(p.env.ID); ok {
			if taken.timer != nil {
				taken.timer.Stop()
			}
			return nil, ctx.Err()
		}
		// Settled concurrently with the cancellation; the result is already
		// buffered.
		return settled(<-p.ch)
	}
}

func settled(r result) (*api.Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if !r.res.OK() {
		return r.res, responseError(r.res)
	}
	return r.res, nil
}

func (c *Client) pool(background bool) map[string]*pendingRequest {
	if background {
		return c.bg
	}
	return c.fg
}

// take removes a pending request from its pool. The remover owns settlement;
// a second take of the same id fails, which is what makes settlement
// idempotent and duplicate responses no-ops.
func (c *Client) take(requestID string) (*pendingRequest, bool) {
	c.mu.Lock()
	p, ok := c.fg[requestID]
	if ok {
		delete(c.fg, requestID)
	} else if p, ok = c.bg[requestID]; ok {
		delete(c.bg, requestID)
	}
	notify, busy := c.updateBusyLocked()
	c.mu.Unlock()

	if notify {
		c.notifyBusy(busy)
	}
	return p, ok
}

// settle resolves a pending request. Safe to call multiple times for the
// same id; only the first call delivers.
func (c *Client) settle(requestID string, r result) {
	p, ok := c.take(requestID)
	if !ok {
		c.logger.Debug("dropping settlement for unknown request", log.Str("request_id", requestID))
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.ch <- r
}

// transmit writes the request envelope and starts the request timer. A write
// failure is not a settlement: the connection is about to die and the
// reconnect will resend the request.
func (c *Client) transmit(ws *websocket.Conn, p *pendingRequest) {
	c.writeMu.Lock()
	err := ws.WriteJSON(p.env)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Debug("transmit failed, leaving request pending",
			log.Str("request_id", p.env.ID), log.Err(err))
		return
	}
	c.mu.Lock()
	if p.timer == nil {
		requestID := p.env.ID
		p.timer = time.AfterFunc(c.timeout, func() {
			c.settle(requestID, result{err: ErrTimeout})
		})
	}
	c.mu.Unlock()
}

func (c *Client) updateBusyLocked() (changed, busy bool) {
	busy = len(c.fg) > 0
	if busy == c.busy {
		return false, busy
	}
	c.busy = busy
	return true, busy
}

func (c *Client) notifyBusy(busy bool) {
	if c.onBusy != nil {
		c.onBusy(busy)
	}
}

// Busy reports whether any foreground request is pending.
func (c *Client) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Client) run(ctx context.Context) {
	for {
		if c.stopped(ctx) {
			return
		}
		ws, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
		if err != nil {
			if resp != nil {
				_ = resp.Body.Close()
			}
			c.logger.Debug("dial failed", log.Str("url", c.url), log.Err(err))
			if !c.sleep(ctx) {
				return
			}
			continue
		}
		if !c.attach(ws) {
			_ = ws.Close()
			return
		}
		c.logger.Debug("connected", log.Str("url", c.url))
		c.resendPending(ws)
		c.readLoop(ws)
		c.detach(ws)
		c.logger.Debug("disconnected", log.Str("url", c.url))
		if c.stopped(ctx) {
			return
		}
		if !c.sleep(ctx) {
			return
		}
	}
}

func (c *Client) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-time.After(c.backoff):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) attach(ws *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.ws = ws
	close(c.connected)
	return true
}

func (c *Client) detach(ws *websocket.Conn) {
	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
		c.connected = make(chan struct{})
	}
	c.mu.Unlock()
	_ = ws.Close()
}

// resendPending retransmits every request still pending, foreground and
// background, with their original ids. The server may thus see a request
// twice; response settlement being idempotent makes that harmless.
func (c *Client) resendPending(ws *websocket.Conn) {
	c.mu.Lock()
	pendings := make([]*pendingRequest, 0, len(c.fg)+len(c.bg))
	for _, p := range c.fg {
		pendings = append(pendings, p)
	}
	for _, p := range c.bg {
		pendings = append(pendings, p)
	}
	c.mu.Unlock()

	for _, p := range pendings {
		c.transmit(ws, p)
	}
}

func (c *Client) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var in api.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.logger.Warn("dropping malformed frame", log.Err(err))
			continue
		}
		switch in.Type {
		case api.TypeResponse:
			c.settle(in.ID, result{res: &api.Response{
				Type:   in.Type,
				ID:     in.ID,
				Status: in.Status,
				Body:   in.Body,
			}})
		case api.TypeNotification:
			c.subs.dispatch(in.Event, in.Body)
		default:
			c.logger.Debug("dropping frame of unknown type", log.Str("type", in.Type))
		}
	}
}
