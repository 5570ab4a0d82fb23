// Package mongo connects to MongoDB with the v2 driver. Config is read from
// MONGODB_* environment variables.
package mongo
