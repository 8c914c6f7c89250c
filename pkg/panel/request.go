package panel

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// Request is a parsed inbound request envelope. URL holds the path without
// its query string; Params is populated by the dispatcher from the matched
// route pattern.
type Request struct {
	ID     string
	Method string
	URL    string
	Query  url.Values
	Params map[string]string
	Body   json.RawMessage

	ctx context.Context
}

// newRequest builds a Request from a wire envelope, normalizing the method to
// upper case and splitting the query string off the URL.
func newRequest(ctx context.Context, env *api.Request) *Request {
	path := env.URL
	query := url.Values{}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if q, err := url.ParseQuery(path[i+1:]); err == nil {
			query = q
		}
		path = path[:i]
	}
	return &Request{
		ID:     env.ID,
		Method: strings.ToUpper(env.Method),
		URL:    path,
		Query:  query,
		Params: map[string]string{},
		Body:   env.Body,
		ctx:    ctx,
	}
}

// Context returns the connection-scoped context.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}
