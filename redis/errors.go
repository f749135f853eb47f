package redis

import "errors"

var (
	// ErrInvalidConfig invalid instance configuration
	ErrInvalidConfig = errors.New("invalid redis config")

	// ErrNoInstances the redis section declares no instance
	ErrNoInstances = errors.New("no redis instance configured")

	// ErrInstanceNotFound unknown instance name
	ErrInstanceNotFound = errors.New("redis instance not found")
)
