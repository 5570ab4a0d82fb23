package logger

import (
	"fmt"
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id fmt.Stringer) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.String("user_id", id.String())
}

// CompanyID records the tenant company under the key "company_id".
func CompanyID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("company_id", id)
}

// Role records a resolved role under the key "role".
func Role(role string) slog.Attr {
	return slog.String("role", role)
}

// Plan records a plan key under the key "plan".
func Plan(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("plan", id)
}

// AccessState records the access guard state.
func AccessState(state string) slog.Attr {
	return slog.String("access_state", state)
}

// BlockReason records why access is blocked. Empty reasons are dropped.
func BlockReason(reason string) slog.Attr {
	if reason == "" {
		return slog.Attr{}
	}
	return slog.String("block_reason", reason)
}

// Route records the requested route.
func Route(path string) slog.Attr {
	return slog.String("route", path)
}

// Seq records a request sequence number.
func Seq(n uint64) slog.Attr {
	return slog.Uint64("seq", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the request identifier.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}
