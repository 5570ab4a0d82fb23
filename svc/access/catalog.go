package access

import (
	"context"
	"errors"

	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// FeatureSource builds the feature catalog from the plan catalog.
func FeatureSource(plans subscription.PlansListSource) feature.Source {
	return feature.SourceFunc(func(ctx context.Context) (map[string][]feature.Key, error) {
		all, err := plans.Load(ctx)
		if err != nil {
			return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
		}
		out := make(map[string][]feature.Key, len(all))
		for id, p := range all {
			keys := make([]feature.Key, len(p.Features))
			for i, f := range p.Features {
				keys[i] = feature.Key(f)
			}
			out[id] = keys
		}
		return out, nil
	})
}
