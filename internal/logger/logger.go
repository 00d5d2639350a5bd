package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a production logger for "production"/"prod", a no-op logger for "test", and a
// development logger otherwise.
func New(env string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return zap.NewProduction()
	case "test":
		return zap.NewNop(), nil
	default:
		return zap.NewDevelopment()
	}
}
