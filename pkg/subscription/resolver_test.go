package subscription_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/subscription"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	args := m.Called(ctx, userID)
	if rec := args.Get(0); rec != nil {
		return rec.(*subscription.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func fixedClock() time.Time { return now }

func TestNewResolver_PanicsOnNilStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { subscription.NewResolver(nil) })
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("derives snapshot from record", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(&subscription.Record{
			UserID:      userID,
			PlanID:      "starter",
			Status:      subscription.StatusTrialing,
			TrialEndsAt: ptr(now.Add(36 * time.Hour)),
		}, nil).Once()

		r := subscription.NewResolver(store, subscription.WithClock(fixedClock))
		snap, err := r.Resolve(t.Context(), userID)
		require.NoError(t, err)
		assert.True(t, snap.IsTrialing)
		assert.Equal(t, 2, snap.TrialDaysRemaining)
		assert.Equal(t, "starter", snap.PlanID)
		store.AssertExpectations(t)
	})

	t.Run("missing record is blocked without error", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound).Once()

		r := subscription.NewResolver(store, subscription.WithClock(fixedClock))
		snap, err := r.Resolve(t.Context(), userID)
		require.NoError(t, err)
		assert.True(t, snap.IsAccessBlocked)
		assert.Equal(t, subscription.ReasonNoActiveSubscription, snap.BlockReason)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		boom := errors.New("connection refused")
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(nil, boom).Once()

		r := subscription.NewResolver(store)
		_, err := r.Resolve(t.Context(), userID)
		require.Error(t, err)
		assert.ErrorIs(t, err, subscription.ErrFetchFailure)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("custom grace period", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := subscription.NewMemoryStore(subscription.Record{
			UserID:     userID,
			Status:     subscription.StatusCanceled,
			CanceledAt: ptr(now.Add(-10 * 24 * time.Hour)),
		})

		r := subscription.NewResolver(store, subscription.WithClock(fixedClock), subscription.WithGracePeriod(14))
		snap, err := r.Resolve(t.Context(), userID)
		require.NoError(t, err)
		assert.Equal(t, 4, *snap.GracePeriodDaysRemaining)
	})

	t.Run("invalid record is still derived", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := subscription.NewMemoryStore(subscription.Record{
			UserID:     userID,
			Status:     subscription.StatusActive,
			CanceledAt: ptr(now),
		})

		r := subscription.NewResolver(store, subscription.WithClock(fixedClock))
		snap, err := r.Resolve(t.Context(), userID)
		require.NoError(t, err)
		assert.True(t, snap.Subscribed)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		release := make(chan time.Time)
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).
			WaitUntil(release).
			Return(&subscription.Record{Status: subscription.StatusActive}, nil)

		r := subscription.NewResolver(store)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := r.Resolve(ctx, userID)
		assert.ErrorIs(t, err, context.Canceled)
		close(release)
	})
}

type countingStore struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *countingStore) Get(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	s.calls.Add(1)
	<-s.release
	return &subscription.Record{UserID: userID, Status: subscription.StatusActive}, nil
}

func TestResolver_SharesConcurrentReads(t *testing.T) {
	t.Parallel()

	store := &countingStore{release: make(chan struct{})}
	r := subscription.NewResolver(store, subscription.WithClock(fixedClock))
	userID := uuid.New()

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan subscription.Snapshot, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := r.Resolve(context.Background(), userID)
			assert.NoError(t, err)
			results <- snap
		}()
	}

	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), store.calls.Load())
	for snap := range results {
		assert.True(t, snap.Subscribed)
	}
}

func TestResolver_ForgetStartsFreshRead(t *testing.T) {
	t.Parallel()

	store := &countingStore{release: make(chan struct{})}
	r := subscription.NewResolver(store)
	userID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = r.Resolve(context.Background(), userID)
	}()
	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, time.Millisecond)

	r.Forget(userID)
	go func() {
		defer wg.Done()
		_, _ = r.Resolve(context.Background(), userID)
	}()
	require.Eventually(t, func() bool { return store.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(store.release)
	wg.Wait()
}
