package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/biportal/pkg/cache"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/pkg/redis"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// Plan cache defaults.
const (
	DefaultPlanCachePrefix   = "portal:plan:"
	DefaultPlanCacheTTL      = 10 * time.Minute
	DefaultPlanLocalTTL      = time.Minute
	DefaultPlanLocalCapacity = 128
)

// PlanCache reads plans through a small in-process LRU, then a shared Redis
// cache, then the source. Redis failures degrade to a source read.
type PlanCache struct {
	source subscription.PlanReader
	shared *redis.Cache[subscription.Plan]
	local  *cache.LRUCache[string, subscription.Plan]
	logger *slog.Logger
}

type PlanCacheOption func(*planCacheOptions)

type planCacheOptions struct {
	localTTL      time.Duration
	localCapacity int
	logger        *slog.Logger
}

func WithLocalTTL(ttl time.Duration) PlanCacheOption {
	return func(o *planCacheOptions) { o.localTTL = ttl }
}

func WithLocalCapacity(n int) PlanCacheOption {
	return func(o *planCacheOptions) { o.localCapacity = n }
}

func WithLogger(l *slog.Logger) PlanCacheOption {
	return func(o *planCacheOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewPlanCache wraps source. shared may be nil, in which case only the
// local LRU is used.
func NewPlanCache(source subscription.PlanReader, shared *redis.Cache[subscription.Plan], opts ...PlanCacheOption) *PlanCache {
	if source == nil {
		panic("store: plan source cannot be nil")
	}
	o := planCacheOptions{
		localTTL:      DefaultPlanLocalTTL,
		localCapacity: DefaultPlanLocalCapacity,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &PlanCache{
		source: source,
		shared: shared,
		local:  cache.NewLRUCache(o.localCapacity, cache.WithTTL[string, subscription.Plan](o.localTTL)),
		logger: o.logger.With(logger.Component("plan_cache")),
	}
}

// GetPlan implements subscription.PlanReader.
func (c *PlanCache) GetPlan(ctx context.Context, planID string) (*subscription.Plan, error) {
	if p, ok := c.local.Get(planID); ok {
		cp := p.Clone()
		return &cp, nil
	}

	if c.shared != nil {
		p, ok, err := c.shared.Get(ctx, planID)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "shared plan cache read failed", logger.Plan(planID), logger.Error(err))
		case ok:
			c.local.Put(planID, p.Clone())
			return &p, nil
		}
	}

	p, err := c.source.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	c.local.Put(planID, p.Clone())
	if c.shared != nil {
		if err := c.shared.Set(ctx, planID, *p); err != nil {
			c.logger.WarnContext(ctx, "shared plan cache write failed", logger.Plan(planID), logger.Error(err))
		}
	}
	return p, nil
}

// Invalidate drops planID from both cache levels.
func (c *PlanCache) Invalidate(ctx context.Context, planID string) error {
	c.local.Remove(planID)
	if c.shared == nil {
		return nil
	}
	return c.shared.Delete(ctx, planID)
}

// OnCatalogChange invalidates the changed plans. It matches
// feature.ReloadHook; failures are logged and the entry expires by TTL.
func (c *PlanCache) OnCatalogChange(ctx context.Context, changed []string) {
	for _, id := range changed {
		if err := c.Invalidate(ctx, id); err != nil {
			c.logger.WarnContext(ctx, "plan cache invalidation failed", logger.Plan(id), logger.Error(err))
		}
	}
}

// InvalidateAll drops every cached plan.
func (c *PlanCache) InvalidateAll(ctx context.Context) error {
	c.local.Clear()
	if c.shared == nil {
		return nil
	}
	return c.shared.Purge(ctx)
}
