// Package store implements the engine's read interfaces on top of the
// billing and identity persistence.
//
// Postgres (pgx) is the primary backend and ships its schema as embedded goose
// migrations, see Migrations. Mongo serves the same interfaces from a document
// database. PlanCache decorates any subscription.PlanReader with an in-process
// LRU and a shared Redis cache.
//
// Nothing in this package writes billing state; subscription rows are owned by
// the billing provider webhooks.
package store
