package access

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/biportal/pkg/async"
	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
	"github.com/dmitrymomot/biportal/svc/auth"
)

// View is what one navigation resolved. Guard, banner, feature gates and
// limit alerts all read the same View, so they never disagree.
type View struct {
	Seq       uint64                 `json:"seq"`
	Route     string                 `json:"route"`
	Role      rbac.Role              `json:"role,omitempty"`
	CompanyID string                 `json:"company_id,omitempty"`
	Snapshot  *subscription.Snapshot `json:"subscription,omitempty"`
	Plan      *subscription.Plan     `json:"plan,omitempty"`
}

// Session is the per-login resolution context. It is created by
// Registry.Open and torn down by Registry.Close or eviction.
type Session struct {
	id      string
	user    auth.User
	company string
	reg     *Registry

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	inflight context.CancelFunc
	guard    *Guard
	view     View
	closed   bool
}

func newSession(reg *Registry, id string, user auth.User, companyID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:      id,
		user:    user,
		company: companyID,
		reg:     reg,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Session) ID() string        { return s.id }
func (s *Session) User() auth.User   { return s.user }
func (s *Session) CompanyID() string { return s.company }

// Navigate starts resolving access to route and returns its guard at once.
// Any resolution still in flight for an earlier navigation is cancelled and
// its results are discarded.
func (s *Session) Navigate(route Route) (*Guard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	guard := NewGuard(route, s.reg.cfg.AuthURL, s.reg.cfg.LandingURL, s.reg.log)
	s.start(guard)
	return guard, nil
}

// Refresh forces a refetch of the current route. The subscription read is
// not shared with any read that started before the refresh.
func (s *Session) Refresh() (*Guard, error) {
	s.reg.deps.Subscriptions.Forget(s.user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.guard == nil {
		return nil, ErrNoNavigation
	}

	guard := s.guard
	if _, err := guard.Refetch(); err != nil {
		// Redirects are final; a refresh starts over with a new guard.
		guard = NewGuard(guard.Route(), s.reg.cfg.AuthURL, s.reg.cfg.LandingURL, s.reg.log)
	}
	s.start(guard)
	return guard, nil
}

// start must be called with s.mu held.
func (s *Session) start(guard *Guard) {
	if s.inflight != nil {
		s.inflight()
	}
	s.seq++
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.guard = guard
	s.view = View{Seq: s.seq, Route: guard.Route().Name, CompanyID: s.company}

	go s.resolve(ctx, s.seq, guard)
}

// Guard returns the guard of the latest navigation, or nil.
func (s *Session) Guard() *Guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard
}

// Decision is the current decision of the latest navigation.
func (s *Session) Decision() Decision {
	if g := s.Guard(); g != nil {
		return g.Decision()
	}
	return Decision{State: StateLoading}
}

// View returns a copy of the latest view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	if v.Snapshot != nil {
		snap := *v.Snapshot
		v.Snapshot = &snap
	}
	if v.Plan != nil {
		plan := v.Plan.Clone()
		v.Plan = &plan
	}
	return v
}

// Gate returns the feature gate for the current view. It is pending until
// the subscription snapshot is known. A plan missing from the catalog
// triggers a catalog reload before the gate is built.
func (s *Session) Gate(ctx context.Context, opts ...feature.GateOption) *feature.Gate {
	v := s.View()
	if v.Snapshot == nil {
		return feature.Pending(opts...)
	}
	return s.reg.deps.Features.GateContext(ctx, v.Snapshot.PlanID, opts...)
}

// Alerts counts the company's resources against the current plan. Nothing
// is reported until the plan is known.
func (s *Session) Alerts(ctx context.Context) []limits.Alert {
	v := s.View()
	if v.Plan == nil || s.reg.deps.Limits == nil {
		return nil
	}
	return s.reg.deps.Limits.Alerts(ctx, v.CompanyID, v.Plan.Limits)
}

// Close cancels in-flight work. Results arriving afterwards are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// apply runs fn with the session locked if seq is still the latest request.
func (s *Session) apply(seq uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		s.reg.metrics.stale()
		s.reg.log.Debug("discarding stale resolution",
			logger.Seq(seq), slog.Uint64("latest", s.seq), slog.Bool("closed", s.closed))
		return false
	}
	fn()
	return true
}

func (s *Session) resolve(ctx context.Context, seq uint64, guard *Guard) {
	started := time.Now()
	cfg := s.reg.cfg
	deadline := started.Add(cfg.FetchTimeout)
	route := guard.Route()
	log := s.reg.log.With(logger.UserID(s.user.ID), logger.Route(route.Name), logger.Seq(seq))

	decide := func(d Decision, err error) {
		if err != nil {
			return
		}
		if d.State.Terminal() {
			s.reg.metrics.decided(d, time.Since(started))
			log.Info("access decided", logger.AccessState(string(d.State)), logger.BlockReason(string(d.Reason)))
		}
	}

	roleF := async.Async(ctx, s.user.ID, func(ctx context.Context, userID uuid.UUID) (rbac.Resolution, error) {
		return retry(ctx, deadline, cfg.RetryInterval, func(ctx context.Context) (rbac.Resolution, error) {
			return s.reg.deps.Roles.Resolve(ctx, userID, s.company)
		})
	})
	snapF := async.Async(ctx, s.user.ID, func(ctx context.Context, userID uuid.UUID) (subscription.Snapshot, error) {
		return retry(ctx, deadline, cfg.RetryInterval, func(ctx context.Context) (subscription.Snapshot, error) {
			return s.reg.deps.Subscriptions.Resolve(ctx, userID)
		})
	})

	res, err := roleF.AwaitContext(ctx)
	if ctx.Err() != nil {
		s.apply(seq, func() {})
		return
	}
	if err != nil {
		log.Warn("role unavailable", logger.Error(err))
		s.apply(seq, func() { decide(guard.Timeout()) })
		return
	}

	role := res.Role
	in := Input{Authenticated: true, Role: role}
	s.apply(seq, func() {
		s.view.Role = role
		if res.CompanyID != "" {
			s.view.CompanyID = res.CompanyID
		}
		if !role.Satisfies(route.Role) || role == rbac.RoleMasterAdmin || !route.RequiresSubscription {
			decide(guard.Resolve(in))
		}
	})

	snap, err := snapF.AwaitContext(ctx)
	if ctx.Err() != nil {
		s.apply(seq, func() {})
		return
	}
	if err != nil {
		log.Warn("subscription status unavailable", logger.Error(err))
		s.apply(seq, func() {
			if !guard.Decision().State.Terminal() {
				decide(guard.Timeout())
			}
		})
		return
	}

	in.Snapshot = &snap
	if !s.apply(seq, func() {
		s.view.Snapshot = &snap
		if !guard.Decision().State.Terminal() {
			decide(guard.Resolve(in))
		}
	}) {
		return
	}

	if snap.PlanID == "" || s.reg.deps.Plans == nil {
		return
	}
	plan, err := s.reg.deps.Plans.GetPlan(ctx, snap.PlanID)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("plan unavailable", logger.Plan(snap.PlanID), logger.Error(err))
		}
		return
	}
	s.apply(seq, func() { s.view.Plan = plan })
}

// retry calls fn until it succeeds, ctx is done or deadline passes,
// sleeping interval between attempts. Each attempt is bounded by deadline.
func retry[T any](ctx context.Context, deadline time.Time, interval time.Duration, fn func(context.Context) (T, error)) (T, error) {
	for {
		attemptCtx, cancel := context.WithDeadline(ctx, deadline)
		v, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return v, ctx.Err()
		}

		wait := min(interval, time.Until(deadline))
		if wait <= 0 {
			return v, errors.Join(ErrStatusUnavailable, err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return v, ctx.Err()
		case <-timer.C:
		}
	}
}
