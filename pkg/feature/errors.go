package feature

import "errors"

var (
	// ErrUnknownPlan is returned for a plan key without a catalog entry.
	ErrUnknownPlan = errors.New("feature.unknown_plan")

	ErrCatalogNotLoaded = errors.New("feature.catalog_not_loaded")
)
