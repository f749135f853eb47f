package component

// Component name constants
const (
	NameConfig    = "config"
	NameLogger    = "logger"
	NameTelemetry = "telemetry"
	NameDatabase  = "database"
	NameRedis     = "redis"
	NameCache     = "cache"
	NameAuth      = "auth"
	NameScheduler = "scheduler"
	NameServer    = "server"
)
