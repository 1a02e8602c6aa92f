package log

import (
	"go.uber.org/zap"
)

// Logger is a no-op by default so library consumers stay silent
// unless they install their own logger.
var Logger = zap.NewNop().Sugar()

func SetLogger(logger *zap.Logger) {
	Logger = logger.Sugar()
}
