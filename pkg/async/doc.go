// Package async runs functions in goroutines and hands back typed futures.
//
//	roles := async.Async(ctx, userID, rolesResolver.Resolve)
//	status := async.Async(ctx, userID, statusResolver.Resolve)
//
//	role, err := roles.AwaitContext(ctx)
//	snap, err := status.AwaitContext(ctx)
//
// Await variants only abandon the wait; cancellation of the work itself is
// carried by the context passed to Async.
package async
