package panel

import "strings"

// HandlerFunc handles one routed request. Returning an error produces an
// error response envelope; a *Error controls the status, anything else
// becomes a 500.
type HandlerFunc func(req *Request, res *Response) error

// segment is one compiled piece of a route pattern. A param segment matches
// any single path segment and binds it under its name.
type segment struct {
	literal string
	param   string
}

type route struct {
	method   string
	raw      string
	segments []segment
	handler  HandlerFunc
}

// Router dispatches requests to handlers by method and path pattern.
// Registration order is preserved; the first structural match wins.
type Router struct {
	routes []route
}

// NewRouter creates an empty router.
func NewRouter() *Router { return &Router{} }

// Get registers a GET route.
func (rt *Router) Get(pattern string, handler HandlerFunc) {
	rt.Handle("GET", pattern, handler)
}

// Post registers a POST route.
func (rt *Router) Post(pattern string, handler HandlerFunc) {
	rt.Handle("POST", pattern, handler)
}

// Put registers a PUT route.
func (rt *Router) Put(pattern string, handler HandlerFunc) {
	rt.Handle("PUT", pattern, handler)
}

// Delete registers a DELETE route.
func (rt *Router) Delete(pattern string, handler HandlerFunc) {
	rt.Handle("DELETE", pattern, handler)
}

// Handle registers a route. Pattern segments starting with ':' are named
// parameters, e.g. /queues/:queueName/jobs/:jobId.
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.routes = append(rt.routes, route{
		method:   strings.ToUpper(method),
		raw:      pattern,
		segments: compilePattern(pattern),
		handler:  handler,
	})
}

// Dispatch routes the request to the first matching handler, or notFound when
// no route matches. Matched path parameters are bound onto req.Params before
// the handler runs.
func (rt *Router) Dispatch(req *Request, res *Response, notFound HandlerFunc) error {
	parts := splitPath(req.URL)
	for i := range rt.routes {
		r := &rt.routes[i]
		if r.method != req.Method {
			continue
		}
		params, ok := matchSegments(r.segments, parts)
		if !ok {
			continue
		}
		req.Params = params
		return r.handler(req, res)
	}
	return notFound(req, res)
}

func compilePattern(pattern string) []segment {
	parts := splitPath(pattern)
	segs := make([]segment, len(parts))
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			segs[i] = segment{param: p[1:]}
		} else {
			segs[i] = segment{literal: p}
		}
	}
	return segs
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(segs []segment, parts []string) (map[string]string, bool) {
	if len(segs) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, s := range segs {
		if s.param != "" {
			params[s.param] = parts[i]
			continue
		}
		if s.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}
