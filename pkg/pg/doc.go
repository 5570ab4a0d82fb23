// Package pg wraps pgx/v5 connection pooling and goose/v3 migrations.
//
// Config is populated from PG_* environment variables. Connect retries until
// the database answers a ping, Migrate applies embedded SQL migrations, and
// Healthcheck returns a readiness probe.
package pg
