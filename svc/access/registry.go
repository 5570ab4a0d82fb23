package access

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/biportal/pkg/cache"
	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
	"github.com/dmitrymomot/biportal/svc/auth"
)

// Dependencies are the read-side collaborators of the engine.
// Plans and Limits are optional.
type Dependencies struct {
	Roles         rbac.Resolver
	Subscriptions subscription.Resolver
	Features      *feature.Registry
	Plans         subscription.PlanReader
	Limits        limits.Service
}

// Registry owns the open sessions. It is bounded: the least recently used
// session is closed when capacity is exceeded.
type Registry struct {
	deps     Dependencies
	cfg      Config
	log      *slog.Logger
	metrics  *Metrics
	sessions *cache.LRUCache[string, *Session]
}

type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l.With(logger.Component("access"))
		}
	}
}

// WithMetrics records decisions and discarded results.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates the engine. Panics if a required dependency is missing.
func NewRegistry(deps Dependencies, cfg Config, opts ...Option) *Registry {
	if deps.Roles == nil || deps.Subscriptions == nil || deps.Features == nil {
		panic("access: roles, subscriptions and features are required")
	}
	r := &Registry{
		deps: deps,
		cfg:  cfg.withDefaults(),
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sessions = cache.NewLRUCache(r.cfg.SessionCapacity,
		cache.WithTTL[string, *Session](r.cfg.SessionTTL),
		cache.WithEvictCallback(func(_ string, s *Session) { s.Close() }),
	)
	return r
}

// Config returns the effective configuration.
func (r *Registry) Config() Config {
	return r.cfg
}

// Open creates a session for user on login.
func (r *Registry) Open(user auth.User, companyID string) *Session {
	if companyID == "" {
		companyID = user.CompanyID
	}
	s := newSession(r, uuid.NewString(), user, companyID)
	r.sessions.Put(s.id, s)
	r.metrics.sessions(r.sessions.Len())
	r.log.Debug("session opened", logger.UserID(user.ID), logger.CompanyID(companyID))
	return s
}

// Get returns an open session.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears down the session on logout.
func (r *Registry) Close(id string) bool {
	_, ok := r.sessions.Remove(id)
	r.metrics.sessions(r.sessions.Len())
	return ok
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Shutdown closes every session.
func (r *Registry) Shutdown() {
	r.sessions.Clear()
	r.metrics.sessions(0)
}
