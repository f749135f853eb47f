package database

import "errors"

var (
	// ErrInvalidConfig invalid connection configuration
	ErrInvalidConfig = errors.New("invalid database config")

	// ErrNoConnections the database section declares no connection
	ErrNoConnections = errors.New("no database connection configured")

	// ErrConnectionNotFound unknown connection name
	ErrConnectionNotFound = errors.New("database connection not found")
)
