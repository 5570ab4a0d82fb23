package rbac

import "errors"

var (
	ErrInvalidRole      = errors.New("rbac.invalid_role")
	ErrFetchFailure     = errors.New("rbac.fetch_failure")
	ErrRoleNotInContext = errors.New("rbac.role_not_in_context")
	ErrInsufficientRole = errors.New("rbac.insufficient_role")
)
