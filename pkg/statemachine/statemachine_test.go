package statemachine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/statemachine"
)

type state string
type event string

const (
	draft     state = "draft"
	inReview  state = "in_review"
	approved  state = "approved"
	rejected  state = "rejected"
	submit    event = "submit"
	approve   event = "approve"
	reject    event = "reject"
	unhandled event = "unhandled"
)

type (
	machine = statemachine.Machine[state, event, map[string]bool]
	guard   = statemachine.Guard[state, event, map[string]bool]
	action  = statemachine.Action[state, event, map[string]bool]
)

func with(from, to state, ev event, opts ...statemachine.TransitionOption[state, event, map[string]bool]) statemachine.Option[state, event, map[string]bool] {
	return statemachine.WithTransition(from, to, ev, opts...)
}

func flag(name string) guard {
	return func(_ context.Context, _ state, _ event, data map[string]bool) bool {
		return data[name]
	}
}

func TestMachine_BasicTransitions(t *testing.T) {
	t.Parallel()

	var m *machine = statemachine.New(draft,
		with(draft, inReview, submit),
		with(inReview, approved, approve),
	)
	ctx := context.Background()

	if m.Current() != draft {
		t.Fatalf("expected initial state %s, got %s", draft, m.Current())
	}

	assert.True(t, m.CanFire(ctx, submit, nil))
	next, err := m.Fire(ctx, submit, nil)
	require.NoError(t, err)
	assert.Equal(t, inReview, next)

	next, err = m.Fire(ctx, approve, nil)
	require.NoError(t, err)
	assert.Equal(t, approved, next)
	assert.Equal(t, approved, m.Current())

	m.Reset()
	assert.Equal(t, draft, m.Current())
}

func TestMachine_FirstPassingTransitionWins(t *testing.T) {
	t.Parallel()

	m := statemachine.New(inReview,
		with(inReview, rejected, approve, statemachine.WithGuards(flag("veto"))),
		with(inReview, approved, approve, statemachine.WithGuards(flag("ok"))),
		with(inReview, draft, approve),
	)
	ctx := context.Background()

	to, err := m.Peek(ctx, approve, map[string]bool{"veto": true, "ok": true})
	require.NoError(t, err)
	assert.Equal(t, rejected, to)

	to, err = m.Peek(ctx, approve, map[string]bool{"ok": true})
	require.NoError(t, err)
	assert.Equal(t, approved, to)

	to, err = m.Peek(ctx, approve, nil)
	require.NoError(t, err)
	assert.Equal(t, draft, to)

	assert.Equal(t, inReview, m.Current(), "peek must not change state")
}

func TestMachine_Guards(t *testing.T) {
	t.Parallel()

	m := statemachine.New(draft,
		with(draft, inReview, submit, statemachine.WithGuards(flag("authorized"), nil)),
	)
	ctx := context.Background()

	assert.False(t, m.CanFire(ctx, submit, map[string]bool{"authorized": false}))
	_, err := m.Fire(ctx, submit, map[string]bool{"authorized": false})
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.Equal(t, draft, m.Current())

	_, err = m.Fire(ctx, submit, map[string]bool{"authorized": true})
	require.NoError(t, err)
	assert.Equal(t, inReview, m.Current())
}

func TestMachine_NotGuard(t *testing.T) {
	t.Parallel()

	m := statemachine.New(draft,
		with(draft, inReview, submit, statemachine.WithGuards(statemachine.Not(flag("locked")))),
	)
	assert.False(t, m.CanFire(context.Background(), submit, map[string]bool{"locked": true}))
	assert.True(t, m.CanFire(context.Background(), submit, nil))
}

func TestMachine_Actions(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(_ context.Context, from, to state, ev event, _ map[string]bool) error {
		calls = append(calls, string(from)+"->"+string(to)+":"+string(ev))
		return nil
	}
	failing := action(func(context.Context, state, state, event, map[string]bool) error {
		return errors.New("action error")
	})

	m := statemachine.New(draft,
		with(draft, inReview, submit, statemachine.WithActions[state, event, map[string]bool](record, nil)),
		with(inReview, rejected, reject, statemachine.WithActions(failing)),
	)
	ctx := context.Background()

	_, err := m.Fire(ctx, submit, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft->in_review:submit"}, calls)

	_, err = m.Fire(ctx, reject, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "action failed"))
	assert.Equal(t, inReview, m.Current())
}

func TestMachine_NoTransition(t *testing.T) {
	t.Parallel()

	m := statemachine.New(draft, with(draft, inReview, submit))

	_, err := m.Fire(context.Background(), unhandled, nil)
	require.Error(t, err)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
	assert.False(t, statemachine.IsTransitionRejectedError(err))
	assert.Contains(t, err.Error(), "draft")

	_, err = m.Peek(context.Background(), unhandled, nil)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
}

func TestMachine_Observer(t *testing.T) {
	t.Parallel()

	var seen []state
	m := statemachine.New(draft,
		with(draft, inReview, submit),
		statemachine.WithObserver[state, event, map[string]bool](func(from, to state, _ event) {
			seen = append(seen, from, to)
		}),
	)

	_, err := m.Fire(context.Background(), submit, nil)
	require.NoError(t, err)
	assert.Equal(t, []state{draft, inReview}, seen)

	m.Reset()
	assert.Len(t, seen, 2)
}

func TestMachine_Concurrent(t *testing.T) {
	t.Parallel()

	m := statemachine.New(draft,
		with(draft, inReview, submit),
		with(inReview, draft, reject),
	)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = m.Fire(ctx, submit, nil)
			} else {
				_, _ = m.Fire(ctx, reject, nil)
			}
			_ = m.Current()
		}()
	}
	wg.Wait()

	assert.Contains(t, []state{draft, inReview}, m.Current())
}
