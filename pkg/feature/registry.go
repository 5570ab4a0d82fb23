package feature

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// DefaultMissReloadInterval bounds how often a gate for an unknown plan
// triggers a catalog reload.
const DefaultMissReloadInterval = 30 * time.Second

// Source loads the plan → keys mapping.
type Source interface {
	Load(ctx context.Context) (map[string][]Key, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (map[string][]Key, error)

func (f SourceFunc) Load(ctx context.Context) (map[string][]Key, error) {
	return f(ctx)
}

// ReloadHook is called after a reload with the plans whose entry changed.
type ReloadHook func(ctx context.Context, changed []string)

// Registry holds the current catalog and swaps it atomically on Reload.
// Gates built before a reload keep the catalog they were built with.
type Registry struct {
	source  Source
	current atomic.Pointer[Catalog]
	logger  *slog.Logger
	hooks   []ReloadHook
	now     func() time.Time

	group        singleflight.Group
	missInterval time.Duration
	mu           sync.Mutex
	lastMiss     time.Time
}

type RegistryOption func(*Registry)

// WithReloadHook registers fn to run after every successful reload.
func WithReloadHook(fn ReloadHook) RegistryOption {
	return func(r *Registry) {
		if fn != nil {
			r.hooks = append(r.hooks, fn)
		}
	}
}

// WithMissReloadInterval sets the minimum time between reloads caused by
// unknown plans. Zero or negative disables them.
func WithMissReloadInterval(d time.Duration) RegistryOption {
	return func(r *Registry) { r.missInterval = d }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry loads the catalog from source. Panics if source is nil.
func NewRegistry(ctx context.Context, source Source, log *slog.Logger, opts ...RegistryOption) (*Registry, error) {
	if source == nil {
		panic("feature: catalog source cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	r := &Registry{
		source:       source,
		logger:       log,
		now:          time.Now,
		missInterval: DefaultMissReloadInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the catalog. On failure the previous catalog stays in place.
// Concurrent calls share one source read.
func (r *Registry) Reload(ctx context.Context) error {
	_, err, _ := r.group.Do("reload", func() (any, error) {
		return nil, r.reload(ctx)
	})
	return err
}

func (r *Registry) reload(ctx context.Context) error {
	plans, err := r.source.Load(ctx)
	if err != nil {
		return errors.Join(ErrCatalogNotLoaded, err)
	}
	next := NewCatalog(plans)
	prev := r.current.Swap(next)
	r.logger.DebugContext(ctx, "feature catalog loaded", slog.Int("plans", len(plans)))

	if prev == nil {
		return nil
	}
	if changed := prev.Changed(next); len(changed) > 0 {
		r.logger.InfoContext(ctx, "feature catalog changed", slog.Any("plans", changed))
		for _, hook := range r.hooks {
			hook(ctx, changed)
		}
	}
	return nil
}

// Watch reloads the catalog every interval until ctx is done.
// Failed reloads are logged and keep the previous catalog.
func (r *Registry) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				r.logger.WarnContext(ctx, "feature catalog reload failed", logger.Error(err))
			}
		}
	}
}

// Catalog returns the current catalog.
func (r *Registry) Catalog() *Catalog {
	return r.current.Load()
}

// Gate builds a gate for planID over the current catalog.
func (r *Registry) Gate(planID string, opts ...GateOption) *Gate {
	return NewGate(r.Catalog(), planID, append([]GateOption{WithLogger(r.logger)}, opts...)...)
}

// GateContext is Gate, but a plan missing from the catalog first triggers a
// reload, at most once per miss interval.
func (r *Registry) GateContext(ctx context.Context, planID string, opts ...GateOption) *Gate {
	if planID != "" && !r.Catalog().HasPlan(planID) && r.claimMiss() {
		if err := r.Reload(ctx); err != nil {
			r.logger.WarnContext(ctx, "feature catalog reload failed", logger.Plan(planID), logger.Error(err))
		}
	}
	return r.Gate(planID, opts...)
}

func (r *Registry) claimMiss() bool {
	if r.missInterval <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !r.lastMiss.IsZero() && now.Sub(r.lastMiss) < r.missInterval {
		return false
	}
	r.lastMiss = now
	return true
}
