package subscription_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]subscription.Status{
		"trialing":  subscription.StatusTrialing,
		"ACTIVE":    subscription.StatusActive,
		"past_due":  subscription.StatusPastDue,
		"canceled":  subscription.StatusCanceled,
		"cancelled": subscription.StatusCanceled,
		" expired ": subscription.StatusExpired,
		"paused":    subscription.StatusUnknown,
		"":          subscription.StatusUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, subscription.ParseStatus(in), "input %q", in)
	}
}

func TestRecord_TrialDaysRemainingAt(t *testing.T) {
	t.Parallel()

	t.Run("zero when not trialing", func(t *testing.T) {
		t.Parallel()
		rec := &subscription.Record{Status: subscription.StatusActive, TrialEndsAt: ptr(now.Add(48 * time.Hour))}
		assert.Equal(t, 0, rec.TrialDaysRemainingAt(now))
	})

	t.Run("zero without end date", func(t *testing.T) {
		t.Parallel()
		rec := &subscription.Record{Status: subscription.StatusTrialing}
		assert.Equal(t, 0, rec.TrialDaysRemainingAt(now))
	})

	t.Run("rounds partial days up", func(t *testing.T) {
		t.Parallel()
		rec := &subscription.Record{Status: subscription.StatusTrialing, TrialEndsAt: ptr(now.Add(36 * time.Hour))}
		assert.Equal(t, 2, rec.TrialDaysRemainingAt(now))
	})

	t.Run("exact days are not rounded", func(t *testing.T) {
		t.Parallel()
		rec := &subscription.Record{Status: subscription.StatusTrialing, TrialEndsAt: ptr(now.Add(72 * time.Hour))}
		assert.Equal(t, 3, rec.TrialDaysRemainingAt(now))
	})

	t.Run("past end date", func(t *testing.T) {
		t.Parallel()
		rec := &subscription.Record{Status: subscription.StatusTrialing, TrialEndsAt: ptr(now.Add(-time.Minute))}
		assert.Equal(t, 0, rec.TrialDaysRemainingAt(now))
	})
}

func TestRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid records", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, (*subscription.Record)(nil).Validate())
		assert.NoError(t, (&subscription.Record{Status: subscription.StatusActive}).Validate())
		assert.NoError(t, (&subscription.Record{Status: subscription.StatusCanceled, CanceledAt: ptr(now)}).Validate())
	})

	t.Run("canceled_at on active record", func(t *testing.T) {
		t.Parallel()
		err := (&subscription.Record{Status: subscription.StatusActive, CanceledAt: ptr(now)}).Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, subscription.ErrInvalidRecord))
	})

	t.Run("canceled without date", func(t *testing.T) {
		t.Parallel()
		err := (&subscription.Record{Status: subscription.StatusCanceled}).Validate()
		assert.ErrorIs(t, err, subscription.ErrInvalidRecord)
	})

	t.Run("trialing without end", func(t *testing.T) {
		t.Parallel()
		err := (&subscription.Record{Status: subscription.StatusTrialing}).Validate()
		assert.ErrorIs(t, err, subscription.ErrInvalidRecord)
	})
}

func TestPlan(t *testing.T) {
	t.Parallel()

	plan := subscription.Plan{
		ID:       "pro",
		Features: []string{"dashboards.export"},
		Limits:   map[limits.Resource]int64{limits.ResourceUsers: 10},
	}

	limit, ok := plan.Limit(limits.ResourceUsers)
	assert.True(t, ok)
	assert.Equal(t, int64(10), limit)

	_, ok = plan.Limit(limits.ResourceCredentials)
	assert.False(t, ok)

	cp := plan.Clone()
	cp.Features[0] = "changed"
	cp.Limits[limits.ResourceUsers] = 1
	assert.Equal(t, "dashboards.export", plan.Features[0])
	assert.Equal(t, int64(10), plan.Limits[limits.ResourceUsers])
}

func TestValidatePlans(t *testing.T) {
	t.Parallel()

	assert.NoError(t, subscription.ValidatePlans(map[string]subscription.Plan{
		"free": {ID: "free", Limits: map[limits.Resource]int64{limits.ResourceDashboards: limits.Unlimited}},
	}))

	err := subscription.ValidatePlans(map[string]subscription.Plan{"free": {ID: "pro"}})
	assert.ErrorIs(t, err, subscription.ErrInvalidPlanConfiguration)

	err = subscription.ValidatePlans(map[string]subscription.Plan{
		"free": {ID: "free", Limits: map[limits.Resource]int64{limits.ResourceUsers: -2}},
	})
	assert.ErrorIs(t, err, subscription.ErrInvalidPlanConfiguration)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := subscription.NewMemoryStore(subscription.Record{
		UserID:      userID,
		Status:      subscription.StatusTrialing,
		TrialEndsAt: ptr(now),
	})

	rec, err := store.Get(t.Context(), userID)
	require.NoError(t, err)
	*rec.TrialEndsAt = now.Add(time.Hour)

	again, err := store.Get(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, now, *again.TrialEndsAt)

	_, err = store.Get(t.Context(), uuid.New())
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	store.Delete(userID)
	_, err = store.Get(t.Context(), userID)
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}
