package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription.not_found")
	ErrFetchFailure         = errors.New("subscription.fetch_failure")
	ErrInvalidRecord        = errors.New("subscription.invalid_record")

	ErrPlanNotFound             = errors.New("subscription.plan_not_found")
	ErrInvalidPlanConfiguration = errors.New("subscription.invalid_plan_configuration")
	ErrFailedToLoadPlans        = errors.New("subscription.failed_to_load_plans")
)
