package rbac

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the role class of a user within a company. Roles are exclusive and
// totally ordered: viewer < admin < master-admin.
type Role string

const (
	RoleViewer      Role = "viewer"
	RoleAdmin       Role = "admin"
	RoleMasterAdmin Role = "master-admin"
)

// ParseRole normalizes a persisted role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewer":
		return RoleViewer, nil
	case "admin":
		return RoleAdmin, nil
	case "master-admin", "master_admin", "masteradmin":
		return RoleMasterAdmin, nil
	}
	return "", ErrInvalidRole
}

// Rank orders roles. Unknown roles rank below viewer.
func (r Role) Rank() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleAdmin:
		return 2
	case RoleMasterAdmin:
		return 3
	}
	return 0
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Satisfies reports whether r meets a route requirement. An empty requirement
// is satisfied by any valid role.
func (r Role) Satisfies(required Role) bool {
	if required == "" {
		return r.Valid()
	}
	return r.Rank() >= required.Rank()
}

// CanManageBilling reports whether the role may act on billing prompts.
// Viewers are told to contact their administrator instead.
func (r Role) CanManageBilling() bool {
	return r == RoleAdmin || r == RoleMasterAdmin
}

func (r Role) String() string {
	return string(r)
}

// Assignment is a persisted role grant of a user within a company.
type Assignment struct {
	UserID    uuid.UUID `json:"user_id" bson:"user_id"`
	CompanyID string    `json:"company_id" bson:"company_id"`
	Role      Role      `json:"role" bson:"role"`
}
