package panel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

func newTestPanel(t *testing.T, eng engine.Engine, opts Options) (*Panel, string) {
	t.Helper()
	opts.Engine = eng
	if opts.Logger == nil {
		opts.Logger = log.NewLogger(log.WithOutput(log.NewWriterOutput(io.Discard)))
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("new panel: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start panel: %v", err)
	}
	t.Cleanup(p.Close)

	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return p, "ws" + strings.TrimPrefix(srv.URL, "http") + p.BasePath()
}

func dialPanel(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, env api.Request) api.Inbound {
	t.Helper()
	if err := ws.WriteJSON(env); err != nil {
		t.Fatalf("write request: %v", err)
	}
	return readFrame(t, ws)
}

func readFrame(t *testing.T, ws *websocket.Conn) api.Inbound {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var in api.Inbound
	if err := ws.ReadJSON(&in); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return in
}

func TestPanelRequestRoundTrip(t *testing.T) {
	eng := &fakeEngine{queues: []*fakeQueue{newFakeQueue("mail")}}
	_, url := newTestPanel(t, eng, Options{})
	ws := dialPanel(t, url)

	in := roundTrip(t, ws, api.Request{ID: "q1", Method: "GET", URL: "/queues"})
	if in.Type != api.TypeResponse || in.ID != "q1" || in.Status != 200 {
		t.Fatalf("frame = %+v", in)
	}
	var queues []api.QueueInfo
	if err := json.Unmarshal(in.Body, &queues); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(queues) != 1 || queues[0].Name != "mail" {
		t.Fatalf("queues = %+v", queues)
	}
}

func TestPanelUnknownRouteEnvelope(t *testing.T) {
	eng := &fakeEngine{queues: []*fakeQueue{newFakeQueue("mail")}}
	_, url := newTestPanel(t, eng, Options{})
	ws := dialPanel(t, url)

	in := roundTrip(t, ws, api.Request{ID: "q2", Method: "PATCH", URL: "/queues"})
	if in.ID != "q2" || in.Status != 404 {
		t.Fatalf("frame = %+v", in)
	}
	var body api.ErrorBody
	if err := json.Unmarshal(in.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body.Message, "PATCH /queues") {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestPanelMalformedFrame(t *testing.T) {
	eng := &fakeEngine{queues: []*fakeQueue{newFakeQueue("mail")}}
	_, url := newTestPanel(t, eng, Options{})
	ws := dialPanel(t, url)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	in := readFrame(t, ws)
	// No id is recoverable from a malformed frame.
	if in.ID != "" || in.Status != 500 {
		t.Fatalf("frame = %+v", in)
	}
}

func TestPanelDebugStacks(t *testing.T) {
	eng := &fakeEngine{queues: []*fakeQueue{newFakeQueue("mail")}}
	_, url := newTestPanel(t, eng, Options{Debug: true})
	ws := dialPanel(t, url)

	in := roundTrip(t, ws, api.Request{ID: "q3", Method: "GET", URL: "/nope"})
	var body api.ErrorBody
	if err := json.Unmarshal(in.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Stack == "" {
		t.Fatal("debug mode omitted the stack")
	}
}

func TestPanelAuthorizeRejectsUpgrade(t *testing.T) {
	eng := &fakeEngine{queues: []*fakeQueue{newFakeQueue("mail")}}
	_, url := newTestPanel(t, eng, Options{
		Authorize: func(r *http.Request) error {
			if r.URL.Query().Get("token") != "secret" {
				return &AuthError{Status: http.StatusUnauthorized, Reason: "bad token"}
			}
			return nil
		},
	})

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}
	_ = resp.Body.Close()

	ws := dialPanel(t, url+"?token=secret")
	in := roundTrip(t, ws, api.Request{ID: "q4", Method: "GET", URL: "/queues"})
	if in.Status != 200 {
		t.Fatalf("frame = %+v", in)
	}
}

func TestPanelBroadcastsLifecycleEvents(t *testing.T) {
	job := &fakeJob{info: api.Job{ID: "42", Name: "send"}, state: engine.StateCompleted}
	q := newFakeQueue("mail", job)
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	p, url := newTestPanel(t, eng, Options{})
	ws := dialPanel(t, url)

	// Fan-out skips engine lookups while the pool is empty, so wait for the
	// connection to be registered before emitting the event.
	deadline := time.Now().Add(2 * time.Second)
	for p.Hub().Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never joined the pool")
		}
		time.Sleep(time.Millisecond)
	}

	q.events <- engine.Event{Queue: "mail", Type: engine.EventCompleted, JobID: "42"}

	in := readFrame(t, ws)
	if in.Type != api.TypeNotification || in.Event != api.EventJobCompleted {
		t.Fatalf("frame = %+v", in)
	}
	var body api.Job
	if err := json.Unmarshal(in.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != "42" || body.Queue != "mail" {
		t.Fatalf("body = %+v", body)
	}
}
