package statemachine

import "context"

// Option configures a Machine during construction.
type Option[S, E comparable, D any] func(*Machine[S, E, D])

// TransitionOption configures a single transition.
type TransitionOption[S, E comparable, D any] func(*Transition[S, E, D])

// New creates a machine starting in initial.
func New[S, E comparable, D any](initial S, opts ...Option[S, E, D]) *Machine[S, E, D] {
	m := newMachine[S, E, D](initial)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithTransition registers a transition. Registration order is precedence.
func WithTransition[S, E comparable, D any](from, to S, event E, opts ...TransitionOption[S, E, D]) Option[S, E, D] {
	return func(m *Machine[S, E, D]) {
		t := Transition[S, E, D]{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		m.AddTransition(t)
	}
}

// WithObserver registers a callback run after every transition.
// Observers run outside the machine lock.
func WithObserver[S, E comparable, D any](obs Observer[S, E]) Option[S, E, D] {
	return func(m *Machine[S, E, D]) {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
	}
}

// WithGuards adds guards to a transition. Nil guards are skipped.
func WithGuards[S, E comparable, D any](guards ...Guard[S, E, D]) TransitionOption[S, E, D] {
	return func(t *Transition[S, E, D]) {
		for _, g := range guards {
			if g != nil {
				t.Guards = append(t.Guards, g)
			}
		}
	}
}

// WithActions adds actions to a transition. Nil actions are skipped.
func WithActions[S, E comparable, D any](actions ...Action[S, E, D]) TransitionOption[S, E, D] {
	return func(t *Transition[S, E, D]) {
		for _, a := range actions {
			if a != nil {
				t.Actions = append(t.Actions, a)
			}
		}
	}
}

// Not inverts a guard.
func Not[S, E comparable, D any](g Guard[S, E, D]) Guard[S, E, D] {
	return func(ctx context.Context, from S, event E, data D) bool {
		return !g(ctx, from, event, data)
	}
}
