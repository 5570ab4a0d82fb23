package limits

// Resource is a countable company resource limited by the plan.
type Resource string

const (
	ResourceDashboards  Resource = "dashboards"
	ResourceUsers       Resource = "users"
	ResourceCredentials Resource = "credentials"
)

// Resources lists the resources tracked by the portal in display order.
var Resources = []Resource{ResourceDashboards, ResourceUsers, ResourceCredentials}

// Unlimited marks a resource without a limit.
const Unlimited int64 = -1

// Usage is the current count of a resource against its plan limit.
type Usage struct {
	Resource Resource `json:"resource"`
	Current  int64    `json:"current"`
	Limit    int64    `json:"limit"`
}

// Reached reports whether no further instance may be created.
// Unlimited resources are never reached.
func (u Usage) Reached() bool {
	if u.Limit == Unlimited {
		return false
	}
	return u.Current >= u.Limit
}

// Remaining returns how many instances may still be created, or Unlimited.
func (u Usage) Remaining() int64 {
	if u.Limit == Unlimited {
		return Unlimited
	}
	return max(0, u.Limit-u.Current)
}

// Percentage returns usage in the 0-100 range, or -1 for unlimited resources.
func (u Usage) Percentage() int {
	switch {
	case u.Limit == Unlimited:
		return -1
	case u.Limit <= 0:
		return 100
	}
	p := int(u.Current * 100 / u.Limit)
	return min(p, 100)
}

// Alert is advisory UI state for a resource whose limit is reached.
type Alert struct {
	Resource Resource `json:"resource"`
	Current  int64    `json:"current"`
	Limit    int64    `json:"limit"`
}
