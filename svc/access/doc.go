// Package access is the session-scoped access engine of the portal.
//
// A Registry holds one Session per login. Each Session.Navigate resolves
// the caller's role and subscription concurrently and feeds them to a Guard,
// a small state machine that moves from loading to allowed, blocked or
// redirect following a fixed precedence:
//
//  1. anonymous callers are redirected to the auth entry point
//  2. callers without the route's role are redirected to the landing page
//  3. master-admins, and routes without subscription coverage, are allowed
//  4. otherwise the subscription snapshot decides
//
// Fetch failures keep the guard loading while it retries; once the fetch
// timeout passes it blocks with status_unavailable. A newer navigation or a
// Refresh cancels the previous resolution and its late results are dropped.
//
// The resolved View is shared by the guard, the Presenter (banner and
// blocked screen), feature gates and limit alerts.
package access
