// Package subscription derives access state from persisted billing records.
//
// A Record is what the billing provider last wrote for a user. Derive turns it
// into a Snapshot by walking a fixed precedence table:
//
//  1. master-managed records are never blocked
//  2. trials are blocked once no trial day remains (partial days round up)
//  3. active subscriptions are subscribed
//  4. canceled subscriptions keep access for a grace period counted in whole
//     days since cancellation (rounded down), 30 by default
//  5. past_due, expired, unknown statuses and users without a record are
//     blocked with ReasonNoActiveSubscription
//
// Derive is pure and takes the current time explicitly. The Resolver wraps it
// with a Store read, sharing concurrent reads for the same user:
//
//	r := subscription.NewResolver(store,
//	    subscription.WithLogger(log),
//	    subscription.WithFetchTimeout(5*time.Second),
//	)
//	snap, err := r.Resolve(ctx, userID)
//	if errors.Is(err, subscription.ErrFetchFailure) {
//	    // retry or fail closed
//	}
//
// Plans describe which feature keys and resource limits a plan carries. They
// are read through PlanReader.
package subscription
