package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/websocket"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// DefaultBasePath is the upgrade path used when Options.BasePath is empty.
const DefaultBasePath = "/bull-admin"

// Options configures a Panel.
type Options struct {
	// BasePath is the upgrade endpoint. Requests for other paths are left to
	// other handlers.
	BasePath string

	// Engine supplies the monitored queues.
	Engine engine.Engine

	// Authorize, when set, is invoked once per upgrade attempt before the
	// handshake. Returning an error rejects the upgrade; an *AuthError
	// controls the HTTP status and reason, anything else maps to 403.
	Authorize func(r *http.Request) error

	// Logger defaults to a text logger at info level.
	Logger log.Logger

	// Debug includes stack traces in error response bodies.
	Debug bool
}

// Panel is the server core: it owns the upgrade handshake, the connection
// pool, the route table, and the notification fan-out.
type Panel struct {
	basePath  string
	eng       engine.Engine
	authorize func(r *http.Request) error
	debug     bool
	logger    log.Logger

	hub      *Hub
	router   *Router
	fanout   *Fanout
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Panel from options. Call Start to begin fan-out, then mount
// the Panel on a mux at its base path.
func New(opts Options) (*Panel, error) {
	if opts.Engine == nil {
		return nil, errors.New("panel: Options.Engine is required")
	}
	basePath := opts.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}

	p := &Panel{
		basePath:  basePath,
		eng:       opts.Engine,
		authorize: opts.Authorize,
		debug:     opts.Debug,
		logger:    logger.WithComponent("panel"),
		hub:       NewHub(),
		router:    NewRouter(),
		upgrader: websocket.Upgrader{
			// Origin policy is delegated to the Authorize hook; the panel
			// itself accepts upgrades from any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	p.fanout = NewFanout(opts.Engine, p.hub, p.logger.WithComponent("fanout"))
	(&controller{eng: opts.Engine}).register(p.router)
	return p, nil
}

// BasePath returns the configured upgrade path.
func (p *Panel) BasePath() string { return p.basePath }

// Hub exposes the live connection pool.
func (p *Panel) Hub() *Hub { return p.hub }

// Start launches the notification fan-out. Connections accepted before Start
// receive no notifications.
func (p *Panel) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)
	return p.fanout.Run(p.ctx)
}

// Close stops fan-out and closes every live connection.
func (p *Panel) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	p.hub.closeAll()
}

// ServeHTTP accepts websocket upgrade requests on the base path. Non-matching
// paths 404 so the Panel can be mounted on a prefix; non-upgrade requests on
// the base path are rejected by the handshake.
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != p.basePath {
		http.NotFound(w, r)
		return
	}
	if p.authorize != nil {
		if err := p.authorize(r); err != nil {
			status := http.StatusForbidden
			reason := err.Error()
			var authErr *AuthError
			if errors.As(err, &authErr) && authErr.Status != 0 {
				status = authErr.Status
			}
			http.Error(w, reason, status)
			return
		}
	}

	ws, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		p.logger.Warn("websocket upgrade failed", log.Err(err))
		return
	}
	p.onConnection(ws)
}

// onConnection registers the connection in the pool and serves its read loop.
// Messages from one connection are handled serially; different connections
// interleave freely.
func (p *Panel) onConnection(ws *websocket.Conn) {
	c := newConn(id.Token(), ws)
	p.hub.add(c)
	p.logger.Debug("connection opened", log.Str("conn_id", c.id), log.Int("pool", p.hub.Len()))

	go func() {
		defer func() {
			p.hub.remove(c.id)
			_ = c.close()
			p.logger.Debug("connection closed", log.Str("conn_id", c.id), log.Int("pool", p.hub.Len()))
		}()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			p.handleMessage(c, data)
		}
	}()
}

func (p *Panel) handleMessage(c *Conn, data []byte) {
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var env api.Request
	if err := json.Unmarshal(data, &env); err != nil {
		// No request id is recoverable from a malformed frame; best effort.
		res := newResponse("", c)
		p.returnError(res, Internal(fmt.Sprintf("malformed request envelope: %v", err)))
		return
	}

	req := newRequest(ctx, &env)
	res := newResponse(req.ID, c)

	err := p.router.Dispatch(req, res, func(req *Request, res *Response) error {
		return NotFound("Not found %s %s", req.Method, req.URL)
	})
	if err != nil {
		p.returnError(res, err)
	}
}

// returnError converts any handler failure into an error response envelope.
// The at-most-once response invariant makes this safe even when the handler
// already responded.
func (p *Panel) returnError(res *Response, err error) {
	status := 500
	var extra json.RawMessage
	var perr *Error
	if errors.As(err, &perr) {
		status = perr.Status
		if perr.Extra != nil {
			extra, _ = json.Marshal(perr.Extra)
		}
	}
	if status >= 500 {
		p.logger.Error("request failed", log.Err(err))
	}

	body := api.ErrorBody{Message: err.Error(), Extra: extra}
	if p.debug {
		body.Stack = string(debug.Stack())
	}
	_ = res.JSONStatus(status, body)
}
