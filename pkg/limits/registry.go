package limits

import (
	"context"
	"fmt"
)

// CounterFunc returns the current count of a resource for a company.
// It runs on every limit check, so it should hit an index or a cached aggregate.
type CounterFunc func(ctx context.Context, companyID string) (int64, error)

// CounterRegistry maps a Resource to its CounterFunc.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[Resource]CounterFunc

func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the counter for res. Panics if fn is nil.
func (r CounterRegistry) Register(res Resource, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("limits: CounterFunc for resource %q cannot be nil", res))
	}
	r[res] = fn
}
