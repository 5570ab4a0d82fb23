package access

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/statemachine"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// State is the access guard state.
type State string

const (
	StateLoading  State = "loading"
	StateAllowed  State = "allowed"
	StateBlocked  State = "blocked"
	StateRedirect State = "redirect"
)

// Terminal reports whether s is a final decision.
func (s State) Terminal() bool {
	return s == StateAllowed || s == StateBlocked || s == StateRedirect
}

// Event drives the guard.
type Event string

const (
	EventResolved Event = "resolved"
	EventRefetch  Event = "refetch"
	EventTimeout  Event = "timeout"
)

// Decision is the guard output consumed by route rendering.
type Decision struct {
	State      State                    `json:"state"`
	Reason     subscription.BlockReason `json:"reason,omitempty"`
	RedirectTo string                   `json:"redirect_to,omitempty"`
}

// Input is what the guard knows once its dependencies have resolved.
// Snapshot may be nil when the route does not need it.
type Input struct {
	Authenticated bool
	Role          rbac.Role
	Snapshot      *subscription.Snapshot
}

type machine = statemachine.Machine[State, Event, Input]

// Guard decides access to one route. It holds loading until both the role
// and the subscription are known, and re-enters loading only on refetch.
type Guard struct {
	route      Route
	authURL    string
	landingURL string

	mu       sync.Mutex
	m        *machine
	decision Decision
	done     chan struct{}
}

// NewGuard creates a guard in the loading state.
func NewGuard(route Route, authURL, landingURL string, log *slog.Logger) *Guard {
	if log == nil {
		log = logger.Discard()
	}
	g := &Guard{
		route:      route,
		authURL:    authURL,
		landingURL: landingURL,
		decision:   Decision{State: StateLoading},
		done:       make(chan struct{}),
	}

	type opt = statemachine.Option[State, Event, Input]
	when := func(guards ...statemachine.Guard[State, Event, Input]) statemachine.TransitionOption[State, Event, Input] {
		return statemachine.WithGuards(guards...)
	}

	// Registration order is the precedence table.
	opts := []opt{
		statemachine.WithTransition(StateLoading, StateRedirect, EventResolved, when(g.unauthenticated)),
		statemachine.WithTransition(StateLoading, StateRedirect, EventResolved, when(g.lacksRole)),
		statemachine.WithTransition(StateLoading, StateAllowed, EventResolved, when(g.bypassesSubscription)),
		statemachine.WithTransition(StateLoading, StateAllowed, EventResolved, when(g.subscriptionOpen)),
		statemachine.WithTransition(StateLoading, StateBlocked, EventResolved, when(g.subscriptionKnown)),
		statemachine.WithTransition[State, Event, Input](StateLoading, StateBlocked, EventTimeout),

		statemachine.WithTransition[State, Event, Input](StateLoading, StateLoading, EventRefetch),
		statemachine.WithTransition[State, Event, Input](StateAllowed, StateLoading, EventRefetch),
		statemachine.WithTransition[State, Event, Input](StateBlocked, StateLoading, EventRefetch),

		statemachine.WithObserver[State, Event, Input](func(from, to State, ev Event) {
			log.Debug("access guard transition",
				logger.Route(route.Name),
				slog.String("from", string(from)),
				logger.AccessState(string(to)),
				slog.String("event", string(ev)),
			)
		}),
	}
	g.m = statemachine.New(StateLoading, opts...)
	return g
}

func (g *Guard) unauthenticated(_ context.Context, _ State, _ Event, in Input) bool {
	return !in.Authenticated
}

func (g *Guard) lacksRole(_ context.Context, _ State, _ Event, in Input) bool {
	return !in.Role.Satisfies(g.route.Role)
}

func (g *Guard) bypassesSubscription(_ context.Context, _ State, _ Event, in Input) bool {
	return in.Role == rbac.RoleMasterAdmin || !g.route.RequiresSubscription
}

func (g *Guard) subscriptionOpen(_ context.Context, _ State, _ Event, in Input) bool {
	return in.Snapshot != nil && !in.Snapshot.IsAccessBlocked
}

func (g *Guard) subscriptionKnown(_ context.Context, _ State, _ Event, in Input) bool {
	return in.Snapshot != nil
}

// Route returns the route the guard protects.
func (g *Guard) Route() Route {
	return g.route
}

// Resolve applies the resolved dependencies. It fails with
// statemachine.ErrNoTransitionAvailable when the input is not yet enough to
// decide, for example a subscription route without a snapshot.
func (g *Guard) Resolve(in Input) (Decision, error) {
	return g.fire(EventResolved, in)
}

// Unauthenticated decides for an anonymous caller without any fetch.
func (g *Guard) Unauthenticated() Decision {
	d, _ := g.fire(EventResolved, Input{})
	return d
}

// Timeout gives up on the pending fetch: blocked with status unavailable.
func (g *Guard) Timeout() (Decision, error) {
	return g.fire(EventTimeout, Input{})
}

// Refetch returns the guard to loading.
func (g *Guard) Refetch() (Decision, error) {
	return g.fire(EventRefetch, Input{})
}

func (g *Guard) fire(ev Event, in Input) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	to, err := g.m.Fire(context.Background(), ev, in)
	if err != nil {
		return g.decision, err
	}

	d := Decision{State: to}
	switch to {
	case StateRedirect:
		d.RedirectTo = g.landingURL
		if !in.Authenticated {
			d.RedirectTo = g.authURL
		}
	case StateBlocked:
		d.Reason = subscription.ReasonStatusUnavailable
		if ev == EventResolved {
			d.Reason = in.Snapshot.BlockReason
		}
	}
	g.decision = d

	if to.Terminal() {
		select {
		case <-g.done:
		default:
			close(g.done)
		}
	} else {
		select {
		case <-g.done:
			g.done = make(chan struct{})
		default:
		}
	}
	return d, nil
}

// Decision returns the current decision without blocking.
func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Wait blocks until the guard reaches a terminal state or ctx is done.
func (g *Guard) Wait(ctx context.Context) (Decision, error) {
	for {
		g.mu.Lock()
		d, done := g.decision, g.done
		g.mu.Unlock()
		if d.State.Terminal() {
			return d, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return d, ctx.Err()
		}
	}
}
