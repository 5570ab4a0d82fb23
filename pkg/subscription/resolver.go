package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// DefaultFetchTimeout bounds a single store read.
const DefaultFetchTimeout = 5 * time.Second

// Resolver turns persisted subscription records into snapshots.
type Resolver interface {
	// Resolve fetches the record of userID and derives its snapshot.
	// A user without a subscription row is not an error: the snapshot is
	// blocked with ReasonNoActiveSubscription. Any other store error is
	// returned wrapped in ErrFetchFailure.
	Resolve(ctx context.Context, userID uuid.UUID) (Snapshot, error)

	// Forget drops an in-flight read of userID so the next Resolve starts a
	// fresh one instead of joining it.
	Forget(userID uuid.UUID)
}

type resolver struct {
	store        Store
	policy       Policy
	now          func() time.Time
	fetchTimeout time.Duration
	logger       *slog.Logger
	group        singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolver)

// WithClock overrides the time source used for derivation.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithGracePeriod sets the number of days a canceled subscription keeps access.
func WithGracePeriod(days int) ResolverOption {
	return func(r *resolver) {
		if days > 0 {
			r.policy.GracePeriodDays = days
		}
	}
}

func WithFetchTimeout(d time.Duration) ResolverOption {
	return func(r *resolver) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver reading from store.
// Panics if store is nil.
func NewResolver(store Store, opts ...ResolverOption) Resolver {
	if store == nil {
		panic("subscription: store cannot be nil")
	}

	r := &resolver{
		store:        store,
		policy:       DefaultPolicy,
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("subscription_resolver"))
	return r
}

func (r *resolver) Resolve(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	// Concurrent callers for the same user share one store read. The read is
	// detached from the first caller's context so its cancellation does not
	// fail the others.
	ch := r.group.DoChan(userID.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()
		return r.fetch(fctx, userID)
	})

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		rec, _ := res.Val.(*Record)
		return r.policy.Derive(rec, r.now()), nil
	}
}

func (r *resolver) Forget(userID uuid.UUID) {
	r.group.Forget(userID.String())
}

func (r *resolver) fetch(ctx context.Context, userID uuid.UUID) (*Record, error) {
	rec, err := r.store.Get(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.WarnContext(ctx, "subscription fetch failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return nil, errors.Join(ErrFetchFailure, err)
	}

	if verr := rec.Validate(); verr != nil {
		r.logger.WarnContext(ctx, "subscription record violates invariants",
			logger.UserID(userID),
			logger.Error(verr),
		)
	}
	return rec, nil
}
