// Package panel implements the server side of the admin panel's realtime
// channel: the websocket transport multiplexer, the request dispatcher, and
// the notification fan-out.
//
// A Panel owns one upgrade endpoint, a pool of live connections, and an
// ordered route table. Each inbound frame is parsed as a request envelope,
// routed to a handler, and answered on the same channel; queue lifecycle
// events are broadcast to every pool member as notification envelopes.
//
// Example:
//
//	p, _ := panel.New(panel.Options{
//		BasePath: "/bull-admin",
//		Engine:   eng,
//		Logger:   logger,
//	})
//	p.Start(ctx)
//	mux.Handle("/bull-admin", p)
package panel
