package access

import (
	"maps"
	"slices"

	"github.com/dmitrymomot/biportal/pkg/rbac"
)

// Route describes what a protected boundary requires of its caller.
// An empty Role admits any authenticated user.
type Route struct {
	Name                 string    `json:"name"`
	Role                 rbac.Role `json:"role,omitempty"`
	RequiresSubscription bool      `json:"requires_subscription"`
}

// Routes is the set of known boundaries keyed by name.
type Routes map[string]Route

// DefaultRoutes are the boundaries of the portal.
func DefaultRoutes() Routes {
	return Routes{
		"dashboards":        {Name: "dashboards", RequiresSubscription: true},
		"dashboards.manage": {Name: "dashboards.manage", Role: rbac.RoleAdmin, RequiresSubscription: true},
		"users":             {Name: "users", Role: rbac.RoleAdmin, RequiresSubscription: true},
		"credentials":       {Name: "credentials", Role: rbac.RoleAdmin, RequiresSubscription: true},
		"billing":           {Name: "billing", Role: rbac.RoleAdmin},
		"plans":             {Name: "plans"},
		"companies":         {Name: "companies", Role: rbac.RoleMasterAdmin},
	}
}

// Lookup returns the route called name.
func (r Routes) Lookup(name string) (Route, bool) {
	route, ok := r[name]
	return route, ok
}

// Names returns the route names in lexical order.
func (r Routes) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
