package subscription

import "time"

// DefaultGracePeriodDays is how long a canceled subscription keeps access.
const DefaultGracePeriodDays = 30

// Snapshot is the normalized view of a subscription at a point in time.
// It is recomputed on every resolution and never persisted.
type Snapshot struct {
	Status                   Status      `json:"status"`
	PlanID                   string      `json:"plan_id,omitempty"`
	Subscribed               bool        `json:"subscribed"`
	IsTrialing               bool        `json:"is_trialing"`
	TrialDaysRemaining       int         `json:"trial_days_remaining"`
	GracePeriodDaysRemaining *int        `json:"grace_period_days_remaining,omitempty"`
	InGracePeriod            bool        `json:"in_grace_period"`
	IsAccessBlocked          bool        `json:"is_access_blocked"`
	BlockReason              BlockReason `json:"block_reason,omitempty"`
	IsMasterManaged          bool        `json:"is_master_managed"`
	ComputedAt               time.Time   `json:"computed_at"`
}

// Policy holds the tunables of the derivation table.
type Policy struct {
	GracePeriodDays int
}

// DefaultPolicy is the policy used by Derive.
var DefaultPolicy = Policy{GracePeriodDays: DefaultGracePeriodDays}

// Derive computes the snapshot for rec at now using DefaultPolicy.
func Derive(rec *Record, now time.Time) Snapshot {
	return DefaultPolicy.Derive(rec, now)
}

// Derive evaluates the precedence table; the first matching rule wins:
//
//  1. master-managed: never blocked
//  2. trialing: blocked once no trial day remains
//  3. active: subscribed
//  4. canceled: blocked once the grace period is used up
//  5. past_due, expired, unknown or missing record: blocked
func (p Policy) Derive(rec *Record, now time.Time) Snapshot {
	snap := Snapshot{ComputedAt: now}
	if rec == nil {
		return blocked(snap, ReasonNoActiveSubscription)
	}

	snap.Status = rec.Status
	snap.PlanID = rec.PlanID
	snap.IsMasterManaged = rec.IsMasterManaged

	if rec.IsMasterManaged {
		return snap
	}

	switch rec.Status {
	case StatusTrialing:
		snap.IsTrialing = true
		snap.TrialDaysRemaining = rec.TrialDaysRemainingAt(now)
		if snap.TrialDaysRemaining == 0 {
			return blocked(snap, ReasonTrialExpired)
		}
		return snap

	case StatusActive:
		snap.Subscribed = true
		return snap

	case StatusCanceled:
		remaining := 0
		if elapsed, ok := rec.DaysSinceCanceledAt(now); ok {
			remaining = max(0, p.gracePeriodDays()-elapsed)
		}
		snap.GracePeriodDaysRemaining = &remaining
		if remaining == 0 {
			return blocked(snap, ReasonGracePeriodExpired)
		}
		snap.InGracePeriod = true
		return snap

	case StatusPastDue, StatusExpired, StatusUnknown:
		return blocked(snap, ReasonNoActiveSubscription)
	}

	return blocked(snap, ReasonNoActiveSubscription)
}

func (p Policy) gracePeriodDays() int {
	if p.GracePeriodDays <= 0 {
		return DefaultGracePeriodDays
	}
	return p.GracePeriodDays
}

func blocked(s Snapshot, reason BlockReason) Snapshot {
	s.IsAccessBlocked = true
	s.BlockReason = reason
	return s
}

// Unavailable is the fail-closed snapshot used once status could not be
// fetched within the allowed time.
func Unavailable(now time.Time) Snapshot {
	return blocked(Snapshot{Status: StatusUnknown, ComputedAt: now}, ReasonStatusUnavailable)
}
