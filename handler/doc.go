// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request struct filled by binders
// (see pkg/binder) and returns a Response. Wrap turns it into an
// http.HandlerFunc:
//
//	r.Get("/access", handler.Wrap(m.access,
//		handler.WithBinders[handler.Context, AccessRequest](binder.Query()),
//		handler.WithErrorHandler[handler.Context, AccessRequest](m.errors),
//	))
//
// Errors are rendered as {"error": "<key>"}. HTTPError sets the status and the
// key; ErrorMapper lets a module translate its own sentinel errors.
package handler
