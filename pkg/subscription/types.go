package subscription

import "strings"

// Status is the billing lifecycle state of a subscription record.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"

	// StatusUnknown is produced by ParseStatus for values the engine does not recognize.
	// It derives exactly like a missing record.
	StatusUnknown Status = "unknown"
)

// ParseStatus normalizes a persisted status string.
// Billing providers disagree on "canceled" vs "cancelled"; both map to StatusCanceled.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trialing", "trial":
		return StatusTrialing
	case "active":
		return StatusActive
	case "past_due", "past-due", "pastdue":
		return StatusPastDue
	case "canceled", "cancelled":
		return StatusCanceled
	case "expired":
		return StatusExpired
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	return string(s)
}

// BlockReason explains why access is blocked. The set is closed.
type BlockReason string

const (
	ReasonNone                 BlockReason = ""
	ReasonTrialExpired         BlockReason = "trial_expired"
	ReasonGracePeriodExpired   BlockReason = "grace_period_expired"
	ReasonNoActiveSubscription BlockReason = "no_active_subscription"
	ReasonStatusUnavailable    BlockReason = "status_unavailable"
)

// Message returns the default human-readable explanation.
// Localized variants live in the translation files under the "blocked.<reason>" keys.
func (r BlockReason) Message() string {
	switch r {
	case ReasonTrialExpired:
		return "trial expired"
	case ReasonGracePeriodExpired:
		return "grace period expired"
	case ReasonNoActiveSubscription:
		return "no active subscription"
	case ReasonStatusUnavailable:
		return "status unavailable"
	case ReasonNone:
		return ""
	}
	return ""
}

func (r BlockReason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}
