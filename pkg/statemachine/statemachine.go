package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Guard vetoes a transition based on runtime data.
type Guard[S, E comparable, D any] func(ctx context.Context, from S, event E, data D) bool

// Action runs after the guards pass and before the state changes.
// Returning an error aborts the transition.
type Action[S, E comparable, D any] func(ctx context.Context, from, to S, event E, data D) error

// Observer is notified after every completed transition.
type Observer[S, E comparable] func(from, to S, event E)

// Transition is a state change triggered by an event.
type Transition[S, E comparable, D any] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E, D]
	Actions []Action[S, E, D]
}

// Machine is a thread-safe finite state machine. Transitions registered for
// the same state and event are tried in registration order and the first
// one whose guards all pass wins, which makes the registration order a
// precedence table.
type Machine[S, E comparable, D any] struct {
	mu          sync.RWMutex
	initial     S
	current     S
	transitions map[S]map[E][]Transition[S, E, D]
	observers   []Observer[S, E]
}

func newMachine[S, E comparable, D any](initial S) *Machine[S, E, D] {
	return &Machine[S, E, D]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]Transition[S, E, D]),
	}
}

func (m *Machine[S, E, D]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition appends a transition after the ones already registered for
// the same state and event.
func (m *Machine[S, E, D]) AddTransition(t Transition[S, E, D]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E][]Transition[S, E, D])
	}
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
}

// Fire applies event and returns the new state.
func (m *Machine[S, E, D]) Fire(ctx context.Context, event E, data D) (S, error) {
	m.mu.Lock()

	from := m.current
	t, err := m.match(ctx, from, event, data)
	if err != nil {
		m.mu.Unlock()
		return from, err
	}

	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			m.mu.Unlock()
			return from, fmt.Errorf("action failed: %w", err)
		}
	}
	m.current = t.To
	observers := m.observers
	m.mu.Unlock()

	for _, obs := range observers {
		obs(from, t.To, event)
	}
	return t.To, nil
}

// Peek returns the state event would lead to without changing anything.
// Actions are not run.
func (m *Machine[S, E, D]) Peek(ctx context.Context, event E, data D) (S, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.match(ctx, m.current, event, data)
	if err != nil {
		var zero S
		return zero, err
	}
	return t.To, nil
}

// CanFire reports whether event has a transition whose guards pass.
func (m *Machine[S, E, D]) CanFire(ctx context.Context, event E, data D) bool {
	_, err := m.Peek(ctx, event, data)
	return err == nil
}

// Reset returns the machine to its initial state without notifying observers.
func (m *Machine[S, E, D]) Reset() {
	m.mu.Lock()
	m.current = m.initial
	m.mu.Unlock()
}

func (m *Machine[S, E, D]) match(ctx context.Context, from S, event E, data D) (*Transition[S, E, D], error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(fmt.Sprint(from), fmt.Sprint(event))
	}

	for i := range candidates {
		if passes(ctx, candidates[i].Guards, from, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, NewErrTransitionRejected(fmt.Sprint(from), fmt.Sprint(event))
}

func passes[S, E comparable, D any](ctx context.Context, guards []Guard[S, E, D], from S, event E, data D) bool {
	for _, guard := range guards {
		if !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
