package access

import "errors"

var (
	ErrSessionClosed     = errors.New("access.session_closed")
	ErrSessionNotFound   = errors.New("access.session_not_found")
	ErrUnknownRoute      = errors.New("access.unknown_route")
	ErrNoNavigation      = errors.New("access.no_navigation")
	ErrStatusUnavailable = errors.New("access.status_unavailable")
)
