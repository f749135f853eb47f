package application

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"go.uber.org/zap"
)

// newLoggerComponent installs the process-wide manager from the logger section
// so package-level logger.GetLogger calls share its outputs
func newLoggerComponent(_ context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}

	cfg := logger.DefaultManagerConfig()
	if loader.IsSet("logger") {
		if err := loader.UnmarshalKey("logger", &cfg); err != nil {
			return nil, fmt.Errorf("read logger config: %w", err)
		}
	}
	if cfg.AppName == "" {
		cfg.AppName = loader.GetString("app.name")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logger.InitManager(cfg), nil
}

// bootstrapLogger resolves the "bootstrap" module logger on every call, so the
// initializer follows the manager installed by the logger component
type bootstrapLogger struct{}

func (bootstrapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.GetLogger("bootstrap").DebugCtx(ctx, msg, fields...)
}

func (bootstrapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.GetLogger("bootstrap").InfoCtx(ctx, msg, fields...)
}

func (bootstrapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.GetLogger("bootstrap").WarnCtx(ctx, msg, fields...)
}

func (bootstrapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.GetLogger("bootstrap").ErrorCtx(ctx, msg, fields...)
}
