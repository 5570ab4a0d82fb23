package limits

import "errors"

var (
	ErrLimitExceeded              = errors.New("limits.limit_exceeded")
	ErrInvalidResource            = errors.New("limits.invalid_resource")
	ErrNoCounterRegistered        = errors.New("limits.no_counter_registered")
	ErrFailedToCountResourceUsage = errors.New("limits.failed_to_count_resource_usage")
)
