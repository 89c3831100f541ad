package redis

import "errors"

var (
	ErrFailedToParseConnString = errors.New("redis: failed to parse connection string")
	ErrNotReady                = errors.New("redis: server did not become ready within the given time period")
	ErrHealthcheckFailed       = errors.New("redis: healthcheck failed")
)
