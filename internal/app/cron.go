package app

import (
	"context"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/config"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/analytics"
	pkgcron "github.com/rianAnugrah/xyz-portal-backend/internal/pkg/cron"
	pkgredis "github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobAnalyticsRetention = "cleanup_analytics"
	JobPasswordResets     = "cleanup_password_resets"

	passwordResetTTL = 24 * time.Hour
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, rc *pkgredis.Client, svc *analytics.Service, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("cron")

	if days := cfg.Analytics.RetentionDays; days > 0 {
		sched.Register(pkgcron.Job{
			Name:        JobAnalyticsRetention,
			Description: "Delete analytics logs past the retention window",
			Interval:    24 * time.Hour,
			Fn: func(ctx context.Context) error {
				cutoff := time.Now().UTC().AddDate(0, 0, -days)
				deleted, err := svc.PurgeBefore(ctx, cutoff)
				if err != nil {
					return err
				}
				cronLogger.Info("analytics logs purged", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
				if deleted == 0 {
					return nil
				}
				if err := middleware.PurgeReportCache(ctx, rc); err != nil {
					cronLogger.Warn("report cache purge failed", zap.Error(err))
				}
				return nil
			},
		})
	}

	sched.Register(pkgcron.Job{
		Name:        JobPasswordResets,
		Description: "Delete password reset tokens older than a day",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-passwordResetTTL)
			result := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.PasswordResetModel{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info("password reset tokens purged", zap.Int64("deleted", result.RowsAffected))
			}
			return nil
		},
	})
}
