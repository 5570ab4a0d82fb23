// Package redis connects to Redis with go-redis/v9 and provides Cache, a
// typed JSON cache with a key prefix and TTL.
package redis
