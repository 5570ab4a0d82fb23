package subscription

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrymomot/biportal/pkg/limits"
)

// Plan is a catalog entry: the feature keys it unlocks and its resource limits.
type Plan struct {
	ID       string                    `json:"id" yaml:"id" bson:"_id"`
	Name     string                    `json:"name" yaml:"name" bson:"name"`
	Features []string                  `json:"features" yaml:"features" bson:"features"`
	Limits   map[limits.Resource]int64 `json:"limits,omitempty" yaml:"limits" bson:"limits"`
}

// Limit returns the plan limit for res. Resources the plan does not mention are
// reported as not configured.
func (p Plan) Limit(res limits.Resource) (int64, bool) {
	v, ok := p.Limits[res]
	return v, ok
}

// Clone returns a deep copy so cached plans cannot be mutated by callers.
func (p Plan) Clone() Plan {
	return Plan{
		ID:       p.ID,
		Name:     p.Name,
		Features: slices.Clone(p.Features),
		Limits:   maps.Clone(p.Limits),
	}
}

// PlanReader reads a single plan by its key.
// Implementations return ErrPlanNotFound for unknown keys.
type PlanReader interface {
	GetPlan(ctx context.Context, planID string) (*Plan, error)
}

// PlansListSource loads the whole catalog at once.
type PlansListSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// ValidatePlans catches catalog mistakes at startup rather than at request time.
func ValidatePlans(plans map[string]Plan) error {
	for id, plan := range plans {
		if plan.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, plan.ID))
		}
		for res, limit := range plan.Limits {
			if limit < limits.Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid limit %d for %s", id, limit, res))
			}
		}
	}
	return nil
}
