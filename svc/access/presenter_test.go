package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
	"github.com/dmitrymomot/biportal/svc/access"
)

func newPresenter(t *testing.T) *access.Presenter {
	t.Helper()
	tr, err := access.NewTranslator(context.Background())
	require.NoError(t, err)
	return access.NewPresenter(tr, access.DefaultConfig())
}

func TestPresenter_Banner(t *testing.T) {
	t.Parallel()
	p := newPresenter(t)

	trial := func(d time.Duration) *subscription.Snapshot {
		return snapshot(&subscription.Record{Status: subscription.StatusTrialing, TrialEndsAt: ptr(now.Add(d))})
	}
	grace := func(daysAgo int) *subscription.Snapshot {
		return snapshot(&subscription.Record{Status: subscription.StatusCanceled,
			CanceledAt: ptr(now.Add(-time.Duration(daysAgo) * 24 * time.Hour))})
	}

	t.Run("last partial day", func(t *testing.T) {
		t.Parallel()
		b := p.Banner("pt-BR", rbac.RoleAdmin, trial(3*time.Hour))
		require.NotNil(t, b)
		assert.Equal(t, "1 dia restante", b.Message)
		require.NotNil(t, b.CTA)
		assert.Equal(t, "Escolher um plano", b.CTA.Label)
		assert.Empty(t, b.ContactAdmin)
	})

	t.Run("grace warning for admin", func(t *testing.T) {
		t.Parallel()
		b := p.Banner("pt-BR", rbac.RoleAdmin, grace(29))
		require.NotNil(t, b)
		assert.Equal(t, access.BannerGrace, b.Kind)
		assert.Equal(t, 1, b.DaysRemaining)
		require.NotNil(t, b.CTA)
		assert.Equal(t, "Reativar assinatura", b.CTA.Label)
	})

	t.Run("english", func(t *testing.T) {
		t.Parallel()
		b := p.Banner("en", rbac.RoleViewer, trial(5*24*time.Hour))
		require.NotNil(t, b)
		assert.Equal(t, "5 days remaining", b.Message)
		assert.Nil(t, b.CTA)
	})

	t.Run("nothing to show", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, p.Banner("pt-BR", rbac.RoleAdmin, nil))
		assert.Nil(t, p.Banner("pt-BR", rbac.RoleAdmin, snapshot(&subscription.Record{Status: subscription.StatusActive})))
		assert.Nil(t, p.Banner("pt-BR", rbac.RoleAdmin, trial(-time.Hour)), "blocked snapshots get the blocked screen")
		assert.Nil(t, p.Banner("pt-BR", rbac.RoleAdmin, snapshot(&subscription.Record{
			Status: subscription.StatusTrialing, TrialEndsAt: ptr(now.Add(time.Hour)), IsMasterManaged: true,
		})))
	})
}

func TestPresenter_BlockedScreen(t *testing.T) {
	t.Parallel()
	p := newPresenter(t)

	tests := []struct {
		reason subscription.BlockReason
		action string
	}{
		{subscription.ReasonTrialExpired, "Escolher um plano"},
		{subscription.ReasonGracePeriodExpired, "Reativar assinatura"},
		{subscription.ReasonNoActiveSubscription, "Ver planos"},
		{subscription.ReasonStatusUnavailable, "Tentar novamente"},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			t.Parallel()
			s := p.BlockedScreen("pt-BR", rbac.RoleAdmin, tt.reason)
			assert.Equal(t, tt.reason, s.Reason)
			assert.NotEmpty(t, s.Title)
			assert.NotEmpty(t, s.Message)
			require.NotNil(t, s.Action)
			assert.Equal(t, tt.action, s.Action.Label)
			assert.Equal(t, "Sair", s.SignOut.Label)
		})
	}

	t.Run("viewer gets instruction instead of action", func(t *testing.T) {
		t.Parallel()
		s := p.BlockedScreen("pt-BR", rbac.RoleViewer, subscription.ReasonGracePeriodExpired)
		assert.Nil(t, s.Action)
		assert.NotEmpty(t, s.ContactAdmin)
		assert.NotEmpty(t, s.SignOut.URL)
	})

	t.Run("distinct messaging per reason", func(t *testing.T) {
		t.Parallel()
		a := p.BlockedScreen("pt-BR", rbac.RoleAdmin, subscription.ReasonTrialExpired)
		b := p.BlockedScreen("pt-BR", rbac.RoleAdmin, subscription.ReasonGracePeriodExpired)
		assert.NotEqual(t, a.Title, b.Title)
		assert.NotEqual(t, a.Message, b.Message)
	})
}

func TestPresenter_GateOptions(t *testing.T) {
	t.Parallel()
	p := newPresenter(t)
	catalog := feature.NewCatalog(map[string][]feature.Key{"starter": {"dashboards.view"}})

	fb := feature.NewGate(catalog, "starter", p.GateOptions("pt-BR", rbac.RoleAdmin)...).Fallback("dashboards.export")
	assert.Equal(t, "/plans", fb.URL)
	assert.NotEmpty(t, fb.Title)

	fb = feature.NewGate(catalog, "starter", p.GateOptions("pt-BR", rbac.RoleViewer)...).Fallback("dashboards.export")
	assert.Empty(t, fb.URL)
	assert.Contains(t, fb.Message, "administrador")
}

func TestPresenter_LimitAlerts(t *testing.T) {
	t.Parallel()
	p := newPresenter(t)

	out := p.LimitAlerts("pt-BR", []limits.Alert{{Resource: limits.ResourceUsers, Current: 5, Limit: 5}})
	require.Len(t, out, 1)
	assert.Equal(t, "Limite de usuários atingido (5 de 5)", out[0].Message)
	assert.Equal(t, limits.ResourceUsers, out[0].Resource)
}
