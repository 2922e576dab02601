package env

import (
	zap "go.uber.org/zap"
)

// MakeLogger builds a JSON production logger, or a console development one
// when debug is set.
func MakeLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopmentConfig().Build()
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	logConfig.Encoding = "json"

	return logConfig.Build()
}
