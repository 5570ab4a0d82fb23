// Package rbac resolves the role class of a portal user.
//
// The portal knows three exclusive roles ordered viewer < admin < master-admin.
// Role assignments are persisted per company and read through a Source; the
// Resolver picks the highest ranked applicable grant:
//
//	res, err := rbac.NewResolver(source).Resolve(ctx, userID, companyID)
//	if err != nil {
//	    return err // wraps rbac.ErrFetchFailure
//	}
//	if res.Role.Satisfies(rbac.RoleAdmin) {
//	    // admin-only route
//	}
//
// A master-admin grant is portal wide and applies in every company. Users with
// no grant at all are treated as viewers.
//
// The resolved role can be carried in a context with SetRoleToContext and
// checked by handlers with Require.
package rbac
