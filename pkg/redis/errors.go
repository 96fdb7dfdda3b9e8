package redis

import "errors"

var (
	ErrEmptyURL         = errors.New("redis: empty connection URL")
	ErrInvalidURL       = errors.New("redis: invalid connection URL")
	ErrConnectionFailed = errors.New("redis: connection failed")
	ErrUnhealthy        = errors.New("redis: ping failed")
)
