package access_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
	"github.com/dmitrymomot/biportal/svc/access"
	"github.com/dmitrymomot/biportal/svc/auth"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

var testPlans = map[string]subscription.Plan{
	"starter": {
		ID:       "starter",
		Name:     "Starter",
		Features: []string{"dashboards.view"},
		Limits:   map[limits.Resource]int64{limits.ResourceDashboards: 3, limits.ResourceUsers: 5},
	},
	"pro": {
		ID:       "pro",
		Name:     "Pro",
		Features: []string{"dashboards.view", "dashboards.export"},
		Limits:   map[limits.Resource]int64{limits.ResourceDashboards: limits.Unlimited},
	},
}

type env struct {
	reg     *access.Registry
	roles   *rbac.MemorySource
	metrics *access.Metrics
}

func newEnv(t *testing.T, store subscription.Store, cfg access.Config, counters limits.CounterRegistry) env {
	t.Helper()
	ctx := context.Background()

	plans, err := subscription.NewMemoryPlans(testPlans)
	require.NoError(t, err)
	features, err := feature.NewRegistry(ctx, access.FeatureSource(plans), nil)
	require.NoError(t, err)

	roles := rbac.NewMemorySource()
	metrics := access.NewMetrics(prometheus.NewRegistry())
	reg := access.NewRegistry(access.Dependencies{
		Roles:         rbac.NewResolver(roles),
		Subscriptions: subscription.NewResolver(store, subscription.WithClock(func() time.Time { return now })),
		Features:      features,
		Plans:         plans,
		Limits:        limits.NewService(counters),
	}, cfg, access.WithMetrics(metrics))
	t.Cleanup(reg.Shutdown)
	return env{reg: reg, roles: roles, metrics: metrics}
}

func fastConfig() access.Config {
	cfg := access.DefaultConfig()
	cfg.FetchTimeout = 300 * time.Millisecond
	cfg.RetryInterval = 20 * time.Millisecond
	return cfg
}

func wait(t *testing.T, g *access.Guard) access.Decision {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d, err := g.Wait(ctx)
	require.NoError(t, err)
	return d
}

func route(name string) access.Route {
	r, ok := access.DefaultRoutes().Lookup(name)
	if !ok {
		panic("unknown route " + name)
	}
	return r
}

func TestViewerOnTrialSeesCountdownWithoutCTA(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New(), Email: "viewer@example.com", CompanyID: "acme"}
	store := subscription.NewMemoryStore(subscription.Record{
		UserID:      user.ID,
		PlanID:      "starter",
		Status:      subscription.StatusTrialing,
		TrialEndsAt: ptr(now.Add(48 * time.Hour)),
	})
	e := newEnv(t, store, fastConfig(), nil)
	e.roles.Grant(rbac.Assignment{UserID: user.ID, CompanyID: "acme", Role: rbac.RoleViewer})

	s := e.reg.Open(user, "")
	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)

	d := wait(t, g)
	assert.Equal(t, access.StateAllowed, d.State)

	tr, err := access.NewTranslator(context.Background())
	require.NoError(t, err)
	p := access.NewPresenter(tr, e.reg.Config())

	v := s.View()
	require.NotNil(t, v.Snapshot)
	b := p.Banner("pt-BR", v.Role, v.Snapshot)
	require.NotNil(t, b)
	assert.Equal(t, access.BannerTrial, b.Kind)
	assert.Equal(t, "2 dias restantes", b.Message)
	assert.Nil(t, b.CTA)
	assert.NotEmpty(t, b.ContactAdmin)
}

func TestAdminCanceledPastGraceIsBlocked(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New(), CompanyID: "acme"}
	store := subscription.NewMemoryStore(subscription.Record{
		UserID:     user.ID,
		PlanID:     "pro",
		Status:     subscription.StatusCanceled,
		CanceledAt: ptr(now.Add(-31 * 24 * time.Hour)),
	})
	e := newEnv(t, store, fastConfig(), nil)
	e.roles.Grant(rbac.Assignment{UserID: user.ID, CompanyID: "acme", Role: rbac.RoleAdmin})

	s := e.reg.Open(user, "acme")
	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)

	d := wait(t, g)
	assert.Equal(t, access.StateBlocked, d.State)
	assert.Equal(t, subscription.ReasonGracePeriodExpired, d.Reason)

	tr, err := access.NewTranslator(context.Background())
	require.NoError(t, err)
	screen := access.NewPresenter(tr, e.reg.Config()).BlockedScreen("pt-BR", rbac.RoleAdmin, d.Reason)
	require.NotNil(t, screen.Action)
	assert.Equal(t, "Reativar assinatura", screen.Action.Label)
	assert.Equal(t, "/plans", screen.Action.URL)
	assert.Equal(t, "/session/logout", screen.SignOut.URL)

	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Decisions.WithLabelValues("blocked", "grace_period_expired")))
}

func TestMasterAdminIsAlwaysAllowed(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, Status: subscription.StatusExpired})
	e := newEnv(t, store, fastConfig(), nil)
	e.roles.Grant(rbac.Assignment{UserID: user.ID, CompanyID: "other", Role: rbac.RoleMasterAdmin})

	s := e.reg.Open(user, "acme")
	for _, name := range access.DefaultRoutes().Names() {
		g, err := s.Navigate(route(name))
		require.NoError(t, err)
		assert.Equal(t, access.StateAllowed, wait(t, g).State, name)
	}
}

func TestRoleRedirects(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, PlanID: "pro", Status: subscription.StatusActive})
	e := newEnv(t, store, fastConfig(), nil)
	s := e.reg.Open(user, "acme")

	tests := []struct {
		route string
		want  access.Decision
	}{
		{"dashboards", access.Decision{State: access.StateAllowed}},
		{"users", access.Decision{State: access.StateRedirect, RedirectTo: "/"}},
		{"companies", access.Decision{State: access.StateRedirect, RedirectTo: "/"}},
		{"plans", access.Decision{State: access.StateAllowed}},
	}
	for _, tt := range tests {
		g, err := s.Navigate(route(tt.route))
		require.NoError(t, err)
		assert.Equal(t, tt.want, wait(t, g), tt.route)
	}
}

func TestNoSubscriptionRouteDoesNotWaitForStatus(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	e := newEnv(t, &blockingStore{release: release}, fastConfig(), nil)
	e.roles.Grant(rbac.Assignment{UserID: user.ID, CompanyID: "acme", Role: rbac.RoleAdmin})

	g, err := e.reg.Open(user, "acme").Navigate(route("billing"))
	require.NoError(t, err)
	assert.Equal(t, access.StateAllowed, wait(t, g).State)
}

type failingStore struct{ calls atomic.Int32 }

func (s *failingStore) Get(context.Context, uuid.UUID) (*subscription.Record, error) {
	s.calls.Add(1)
	return nil, errors.New("connection refused")
}

func TestFetchFailureBlocksAfterTimeout(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := &failingStore{}
	e := newEnv(t, store, fastConfig(), nil)

	g, err := e.reg.Open(user, "acme").Navigate(route("dashboards"))
	require.NoError(t, err)
	assert.Equal(t, access.StateLoading, g.Decision().State)

	d := wait(t, g)
	assert.Equal(t, access.StateBlocked, d.State)
	assert.Equal(t, subscription.ReasonStatusUnavailable, d.Reason)
	assert.Greater(t, store.calls.Load(), int32(1), "fetch is retried before giving up")
}

func TestFetchFailureStillAllowsMasterAdmin(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	e := newEnv(t, &failingStore{}, fastConfig(), nil)
	e.roles.Grant(rbac.Assignment{UserID: user.ID, Role: rbac.RoleMasterAdmin})

	g, err := e.reg.Open(user, "acme").Navigate(route("dashboards"))
	require.NoError(t, err)
	assert.Equal(t, access.StateAllowed, wait(t, g).State)
}

// sequencedStore answers the first read only after release is closed, and
// answers every later read at once.
type sequencedStore struct {
	first   subscription.Record
	later   subscription.Record
	release chan struct{}
	calls   atomic.Int32
}

func (s *sequencedStore) Get(ctx context.Context, _ uuid.UUID) (*subscription.Record, error) {
	if s.calls.Add(1) == 1 {
		<-s.release
		rec := s.first
		return &rec, nil
	}
	rec := s.later
	return &rec, nil
}

func TestLastIssuedRequestWins(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := &sequencedStore{
		first:   subscription.Record{UserID: user.ID, PlanID: "pro", Status: subscription.StatusActive},
		later:   subscription.Record{UserID: user.ID, Status: subscription.StatusExpired},
		release: make(chan struct{}),
	}
	e := newEnv(t, store, fastConfig(), nil)
	s := e.reg.Open(user, "acme")

	first, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second, err := s.Refresh()
	require.NoError(t, err)
	assert.Same(t, first, second)

	d := wait(t, second)
	assert.Equal(t, access.StateBlocked, d.State)
	assert.Equal(t, subscription.ReasonNoActiveSubscription, d.Reason)

	// The first request completes last and must not win.
	close(store.release)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(e.metrics.StaleDiscarded) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, d, s.Decision())
	assert.Equal(t, subscription.StatusExpired, s.View().Snapshot.Status)
}

type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Get(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	<-s.release
	return &subscription.Record{UserID: userID, PlanID: "pro", Status: subscription.StatusActive}, nil
}

func TestCloseIgnoresLateResults(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	release := make(chan struct{})
	e := newEnv(t, &blockingStore{release: release}, fastConfig(), nil)

	s := e.reg.Open(user, "acme")
	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)

	require.True(t, e.reg.Close(s.ID()))
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, access.StateLoading, g.Decision().State)
	assert.Nil(t, s.View().Snapshot)

	_, err = s.Navigate(route("dashboards"))
	assert.ErrorIs(t, err, access.ErrSessionClosed)
	_, err = e.reg.Get(s.ID())
	assert.ErrorIs(t, err, access.ErrSessionNotFound)
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.SessionCapacity = 1
	e := newEnv(t, subscription.NewMemoryStore(), cfg, nil)

	first := e.reg.Open(auth.User{ID: uuid.New()}, "a")
	second := e.reg.Open(auth.User{ID: uuid.New()}, "b")

	assert.Equal(t, 1, e.reg.Len())
	_, err := first.Navigate(route("plans"))
	assert.ErrorIs(t, err, access.ErrSessionClosed)

	got, err := e.reg.Get(second.ID())
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestSessionGateAndAlerts(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, PlanID: "starter", Status: subscription.StatusActive})
	counters := limits.NewRegistry()
	counters.Register(limits.ResourceDashboards, func(context.Context, string) (int64, error) { return 3, nil })
	counters.Register(limits.ResourceUsers, func(context.Context, string) (int64, error) { return 1, nil })
	e := newEnv(t, store, fastConfig(), counters)

	s := e.reg.Open(user, "acme")
	assert.Equal(t, feature.Undetermined, s.Gate(context.Background()).Check("dashboards.view"))
	assert.Nil(t, s.Alerts(context.Background()))

	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)
	require.Equal(t, access.StateAllowed, wait(t, g).State)
	require.Eventually(t, func() bool { return s.View().Plan != nil }, time.Second, 5*time.Millisecond)

	gate := s.Gate(context.Background())
	assert.Equal(t, feature.Granted, gate.Check("dashboards.view"))
	assert.Equal(t, feature.Denied, gate.Check("dashboards.export"))

	alerts := s.Alerts(context.Background())
	require.Len(t, alerts, 1)
	assert.Equal(t, limits.ResourceDashboards, alerts[0].Resource)
}

func TestUnknownPlanDeniesEveryFeature(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, PlanID: "legacy", Status: subscription.StatusActive})
	e := newEnv(t, store, fastConfig(), nil)

	s := e.reg.Open(user, "acme")
	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)
	assert.Equal(t, access.StateAllowed, wait(t, g).State)
	assert.Equal(t, feature.Denied, s.Gate(context.Background()).Check("dashboards.view"))
}

func TestConcurrentNavigations(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, PlanID: "pro", Status: subscription.StatusActive})
	e := newEnv(t, store, fastConfig(), nil)
	s := e.reg.Open(user, "acme")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Navigate(route("dashboards"))
		}()
	}
	wg.Wait()

	assert.Equal(t, access.StateAllowed, wait(t, s.Guard()).State)
}

func TestSessionGate_PlanAddedAfterStartup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	plans, err := subscription.NewMemoryPlans(testPlans)
	require.NoError(t, err)
	features, err := feature.NewRegistry(ctx, access.FeatureSource(plans), nil)
	require.NoError(t, err)

	user := auth.User{ID: uuid.New()}
	store := subscription.NewMemoryStore(subscription.Record{UserID: user.ID, PlanID: "pro", Status: subscription.StatusActive})
	reg := access.NewRegistry(access.Dependencies{
		Roles:         rbac.NewResolver(rbac.NewMemorySource()),
		Subscriptions: subscription.NewResolver(store, subscription.WithClock(func() time.Time { return now })),
		Features:      features,
		Plans:         plans,
	}, fastConfig())
	t.Cleanup(reg.Shutdown)

	plans.Put(subscription.Plan{ID: "pro", Name: "Pro", Features: []string{"dashboards.view", "dashboards.export"}})

	s := reg.Open(user, "acme")
	g, err := s.Navigate(route("dashboards"))
	require.NoError(t, err)
	require.Equal(t, access.StateAllowed, wait(t, g).State)
	require.Eventually(t, func() bool { return s.View().Plan != nil }, time.Second, 5*time.Millisecond)

	assert.Equal(t, "pro", s.View().Plan.ID)
	assert.Equal(t, feature.Granted, s.Gate(ctx).Check("dashboards.export"))
	assert.True(t, features.Catalog().HasPlan("pro"))
}
