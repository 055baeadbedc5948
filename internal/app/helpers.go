package app

import (
	"github.com/google/uuid"
	"github.com/rianAnugrah/xyz-portal-backend/internal/config"
	"go.uber.org/zap"
)

// resolveJWTSecret returns jwt_secret, or a random per-process secret when it
// is empty.
func resolveJWTSecret(cfg *config.AppConfig, logger *zap.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	logger.Warn("jwt_secret is empty, using a random secret; issued tokens will not survive a restart")
	return uuid.NewString() + uuid.NewString()
}
