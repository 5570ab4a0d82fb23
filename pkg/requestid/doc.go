// Package requestid tags every request with an id that is echoed in the
// X-Request-ID header and attached to log records.
package requestid
