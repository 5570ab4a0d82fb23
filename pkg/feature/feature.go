package feature

import (
	"maps"
	"slices"
)

// Key is a stable identifier of an optional capability gated by plan.
type Key string

// Catalog maps plan identifiers to the feature keys they unlock.
// A Catalog is immutable once built; use With to derive a modified copy.
type Catalog struct {
	plans map[string]map[Key]struct{}
}

// NewCatalog builds a catalog from plan → keys pairs.
func NewCatalog(plans map[string][]Key) *Catalog {
	c := &Catalog{plans: make(map[string]map[Key]struct{}, len(plans))}
	for id, keys := range plans {
		c.plans[id] = toSet(keys)
	}
	return c
}

// HasPlan reports whether planID has a catalog entry.
func (c *Catalog) HasPlan(planID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.plans[planID]
	return ok
}

// Has reports whether planID unlocks key.
// Returns ErrUnknownPlan when planID has no catalog entry.
func (c *Catalog) Has(planID string, key Key) (bool, error) {
	if !c.HasPlan(planID) {
		return false, ErrUnknownPlan
	}
	_, ok := c.plans[planID][key]
	return ok, nil
}

// Keys returns the sorted keys unlocked by planID.
func (c *Catalog) Keys(planID string) []Key {
	if !c.HasPlan(planID) {
		return nil
	}
	return slices.Sorted(maps.Keys(c.plans[planID]))
}

// Plans returns the sorted plan identifiers.
func (c *Catalog) Plans() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.plans))
}

// With returns a copy of the catalog where planID unlocks exactly keys.
func (c *Catalog) With(planID string, keys ...Key) *Catalog {
	next := &Catalog{plans: make(map[string]map[Key]struct{}, len(c.plans)+1)}
	for id, set := range c.plans {
		next.plans[id] = set
	}
	next.plans[planID] = toSet(keys)
	return next
}

func toSet(keys []Key) map[Key]struct{} {
	set := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Changed returns the sorted plans that were added, removed or whose keys
// differ between c and next.
func (c *Catalog) Changed(next *Catalog) []string {
	var changed []string
	for _, id := range next.Plans() {
		if !c.HasPlan(id) || !maps.Equal(c.plans[id], next.plans[id]) {
			changed = append(changed, id)
		}
	}
	for _, id := range c.Plans() {
		if !next.HasPlan(id) {
			changed = append(changed, id)
		}
	}
	slices.Sort(changed)
	return changed
}
