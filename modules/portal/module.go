package portal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/biportal/handler"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/svc/access"
	"github.com/dmitrymomot/biportal/svc/auth"
	"github.com/dmitrymomot/biportal/svc/company"
)

// AccessCookie holds the id of the caller's access session.
const AccessCookie = "portal_access"

// Module serves the access engine over HTTP.
type Module struct {
	registry  *access.Registry
	presenter *access.Presenter
	routes    access.Routes
	cfg       access.Config
	secure    bool
	log       *slog.Logger
	onError   handler.ErrorHandler[handler.Context]
}

type Option func(*Module)

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRoutes replaces the default route table.
func WithRoutes(routes access.Routes) Option {
	return func(m *Module) {
		if len(routes) > 0 {
			m.routes = routes
		}
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(m *Module) { m.secure = secure }
}

func New(registry *access.Registry, presenter *access.Presenter, opts ...Option) *Module {
	if registry == nil {
		panic("portal: access registry cannot be nil")
	}
	if presenter == nil {
		panic("portal: presenter cannot be nil")
	}
	m := &Module{
		registry:  registry,
		presenter: presenter,
		routes:    access.DefaultRoutes(),
		cfg:       registry.Config(),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("portal"))
	m.onError = handler.NewErrorHandler[handler.Context](m.log, errorCodes)
	return m
}

var errorCodes = handler.MapErrors(map[error]int{
	access.ErrUnknownRoute:       http.StatusNotFound,
	access.ErrSessionNotFound:    http.StatusNotFound,
	access.ErrNoNavigation:       http.StatusConflict,
	access.ErrSessionClosed:      http.StatusGone,
	auth.ErrUnauthenticated:      http.StatusUnauthorized,
	company.ErrInvalidIdentifier: http.StatusBadRequest,
})
