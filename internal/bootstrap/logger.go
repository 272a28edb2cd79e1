package bootstrap

import (
	"os"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Anything other than APP_ENV=production gets the development config.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// FxLogger routes fx lifecycle events through zap.
func FxLogger(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
}
