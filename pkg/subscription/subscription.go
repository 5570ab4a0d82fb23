package subscription

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted billing subscription of a user.
// It is owned by billing persistence and mutated only by provider webhooks;
// the engine reads it and never writes it back.
type Record struct {
	UserID          uuid.UUID
	PlanID          string
	Status          Status
	TrialEndsAt     *time.Time // set only while trialing
	CanceledAt      *time.Time // set only when canceled
	IsMasterManaged bool       // centrally administered, bypasses all gating
	UpdatedAt       time.Time
}

func (r *Record) IsTrialing() bool {
	return r != nil && r.Status == StatusTrialing
}

func (r *Record) IsActive() bool {
	return r != nil && r.Status == StatusActive
}

func (r *Record) IsCanceled() bool {
	return r != nil && r.Status == StatusCanceled
}

// Validate reports violations of the record invariants.
// Derivation never depends on it: a broken record is still evaluated by the
// precedence table, the result is only used for diagnostics.
func (r *Record) Validate() error {
	if r == nil {
		return nil
	}

	var errs []error
	if r.CanceledAt != nil && r.Status != StatusCanceled {
		errs = append(errs, errors.New("canceled_at is set but status is "+string(r.Status)))
	}
	if r.Status == StatusCanceled && r.CanceledAt == nil {
		errs = append(errs, errors.New("status is canceled but canceled_at is missing"))
	}
	if r.Status == StatusTrialing && r.TrialEndsAt == nil {
		errs = append(errs, errors.New("status is trialing but trial_ends_at is missing"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidRecord}, errs...)...)
}

// TrialDaysRemainingAt returns the whole days left in the trial at now.
// Partial days round up, so the last partial day still reads as one day.
func (r *Record) TrialDaysRemainingAt(now time.Time) int {
	if !r.IsTrialing() || r.TrialEndsAt == nil {
		return 0
	}
	return ceilDays(r.TrialEndsAt.Sub(now))
}

// DaysSinceCanceledAt returns the whole days elapsed since cancellation, rounded down.
func (r *Record) DaysSinceCanceledAt(now time.Time) (int, bool) {
	if r == nil || r.CanceledAt == nil {
		return 0, false
	}
	return floorDays(now.Sub(*r.CanceledAt)), true
}

const day = 24 * time.Hour

func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := d / day
	if d%day != 0 {
		days++
	}
	return int(days)
}

func floorDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / day)
}
