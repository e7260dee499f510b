package redis

import "errors"

var (
	ErrParseURL          = errors.New("redis: failed to parse connection url")
	ErrNotReady          = errors.New("redis: server not ready")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
