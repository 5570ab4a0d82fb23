// Package httpserver runs an http.Server bound to a context: cancel the
// context (for example from signal.NotifyContext) and the server drains,
// then runs its shutdown hooks. It also provides liveness and readiness
// handlers for dependency probes.
package httpserver
