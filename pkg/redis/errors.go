package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: failed to parse connection string")
	ErrRedisNotReady                = errors.New("redis: server did not become ready")
	ErrEmptyConnectionURL           = errors.New("redis: empty connection URL")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
	ErrCacheRead                    = errors.New("redis: cache read failed")
	ErrCacheWrite                   = errors.New("redis: cache write failed")
	ErrCacheDecode                  = errors.New("redis: cache value encoding failed")
)
