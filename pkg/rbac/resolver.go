package rbac

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// Source reads persisted role assignments.
type Source interface {
	// GetRoles returns every assignment of userID. An empty slice is not an error.
	GetRoles(ctx context.Context, userID uuid.UUID) ([]Assignment, error)
}

// Resolution is the effective role of a user.
type Resolution struct {
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// Resolver derives the effective role from assignments.
type Resolver interface {
	// Resolve returns the highest ranked role the user holds in companyID.
	// A master-admin grant applies in every company. An empty companyID
	// considers all assignments. Users without any applicable grant resolve
	// to viewer. Source failures are wrapped in ErrFetchFailure.
	Resolve(ctx context.Context, userID uuid.UUID, companyID string) (Resolution, error)
}

type resolver struct {
	source Source
	logger *slog.Logger
}

type ResolverOption func(*resolver)

func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a role resolver. Panics if source is nil.
func NewResolver(source Source, opts ...ResolverOption) Resolver {
	if source == nil {
		panic("rbac: role source cannot be nil")
	}
	r := &resolver{source: source, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *resolver) Resolve(ctx context.Context, userID uuid.UUID, companyID string) (Resolution, error) {
	assignments, err := r.source.GetRoles(ctx, userID)
	if err != nil {
		return Resolution{}, errors.Join(ErrFetchFailure, err)
	}

	best := Resolution{Role: RoleViewer, CompanyID: companyID}
	bestRank := 0
	for _, a := range assignments {
		if !a.Role.Valid() {
			r.logger.WarnContext(ctx, "ignoring unknown role assignment",
				logger.UserID(userID),
				logger.Role(string(a.Role)),
			)
			continue
		}
		if companyID != "" && a.CompanyID != companyID && a.Role != RoleMasterAdmin {
			continue
		}
		if a.Role.Rank() > bestRank {
			bestRank = a.Role.Rank()
			best.Role = a.Role
			if companyID == "" {
				best.CompanyID = a.CompanyID
			}
		}
	}
	return best, nil
}

// Require checks the role stored in ctx against required.
func Require(ctx context.Context, required Role) error {
	role, ok := GetRoleFromContext(ctx)
	if !ok {
		return errors.Join(ErrRoleNotInContext, ErrInsufficientRole)
	}
	if !role.Satisfies(required) {
		return ErrInsufficientRole
	}
	return nil
}
