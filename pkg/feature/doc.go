// Package feature gates optional capabilities by subscription plan.
//
// A Catalog maps plan identifiers to the feature keys they unlock. A Gate
// evaluates keys for one plan and returns a tri-state Decision:
//
//   - Undetermined while the plan is still loading (see Pending), so callers
//     render neither the feature nor its fallback
//   - Granted when the plan's key set contains the key
//   - Denied otherwise, including for plans without a catalog entry
//
// Checks are pure functions of the plan and the catalog the gate was built
// with. Denial never fails: Fallback returns either a caller-supplied
// presentation or an inert prompt linking to the upgrade flow.
//
//	gate := registry.Gate(view.PlanID, feature.WithUpgradeURL("/plans"))
//	switch gate.Check("dashboards.export") {
//	case feature.Granted:
//	    // render export button
//	case feature.Denied:
//	    fb := gate.Fallback("dashboards.export")
//	    // render fb
//	}
//
// Registry keeps the current catalog and reloads it from a Source.
package feature
