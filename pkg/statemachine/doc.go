// Package statemachine implements a small generic finite state machine.
//
// States and events are any comparable types, usually string enums. Each
// transition may carry guards, which veto it, and actions, which run before the
// state changes. Transitions registered for the same state and event are tried
// in registration order and the first whose guards pass wins, so a list of
// guarded transitions reads as a precedence table:
//
//	type state string
//	type event string
//
//	m := statemachine.New[state, event, *input]("loading",
//	    statemachine.WithTransition[state, event, *input]("loading", "redirect", "resolved",
//	        statemachine.WithGuards(unauthenticated)),
//	    statemachine.WithTransition[state, event, *input]("loading", "allowed", "resolved",
//	        statemachine.WithGuards(notBlocked)),
//	    statemachine.WithTransition[state, event, *input]("loading", "blocked", "resolved"),
//	)
//	next, err := m.Fire(ctx, "resolved", in)
//
// Fire returns *ErrNoTransitionAvailable when nothing is registered for the
// current state and event, and *ErrTransitionRejected when every candidate was
// vetoed. Peek evaluates the table without changing state.
//
// Machines are safe for concurrent use. Observers registered with WithObserver
// run after the lock is released.
package statemachine
