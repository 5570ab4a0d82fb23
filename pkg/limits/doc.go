// Package limits reports resource usage against plan limits.
//
// A limit is reached when the current count is greater than or equal to the
// limit; Unlimited (-1) is never reached. Counts come from CounterFuncs
// registered per resource:
//
//	counters := limits.NewRegistry()
//	counters.Register(limits.ResourceDashboards, store.CountDashboards)
//
//	svc := limits.NewService(counters)
//	for _, a := range svc.Alerts(ctx, companyID, plan.Limits) {
//	    // show "limit reached" for a.Resource
//	}
//
// Alerts are advisory. A counter that fails drops its resource from the
// result instead of failing the whole report.
package limits
