package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the YAML file.
const (
	EnvDatabaseURL    = "XYZ_DATABASE_URL"
	EnvRedisURL       = "XYZ_REDIS_URL"
	EnvJWTSecret      = "XYZ_JWT_SECRET"
	EnvStorageAccess  = "XYZ_STORAGE_ACCESS_KEY"
	EnvStorageSecret  = "XYZ_STORAGE_SECRET_KEY"
	EnvStorageBaseURL = "XYZ_STORAGE_PUBLIC_URL"
	EnvMailPassword   = "XYZ_MAIL_PASSWORD"
	EnvResendKey      = "XYZ_RESEND_KEY"
)

// Load reads the YAML config at configPath, applies defaults, environment
// overrides and validation. A missing file is an error.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content into an AppConfig. Unknown keys are rejected.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:        defaultPort,
		Env:         defaultEnv,
		JWTTTLHours: defaultJWTTTLHours,
		Database: DatabaseConfig{
			Driver:       defaultDBDriver,
			Host:         defaultDBHost,
			Port:         defaultDBPort,
			User:         defaultDBUser,
			Password:     defaultDBPassword,
			Name:         defaultDBName,
			SSLMode:      defaultDBSSLMode,
			MaxOpenConns: defaultDBMaxOpen,
			MaxIdleConns: defaultDBMaxIdle,
			AutoMigrate:  true,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Storage: StorageConfig{
			Region:      defaultStorageRegion,
			Bucket:      defaultStorageBucket,
			PathStyle:   true,
			MaxUploadMB: defaultMaxUploadMB,
		},
		Log: LogConfig{
			Level:        defaultLogLevel,
			RotateSizeMB: defaultLogRotateSize,
			RotateKeep:   defaultLogRotateKeep,
		},
		Analytics: AnalyticsConfig{
			BatchSize:       defaultBatchSize,
			IngestRateLimit: defaultIngestPerMin,
			CacheTTLSeconds: defaultCacheTTLSecond,
		},
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageAccess)); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageSecret)); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBaseURL)); v != "" {
		cfg.Storage.PublicURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailPassword)); v != "" {
		cfg.Mail.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResendKey)); v != "" {
		cfg.Mail.ResendKey = v
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && (c.Database.Port < 1 || c.Database.Port > 65535) {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q, expected postgres or sqlite", c.Database.Driver)
	}
	if c.Redis.Enabled && c.Redis.URL == "" && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Analytics.BatchSize < 1 || c.Analytics.BatchSize > maxBatchSize {
		return fmt.Errorf("invalid analytics.batch_size %d, expected 1-%d", c.Analytics.BatchSize, maxBatchSize)
	}
	if c.Analytics.RetentionDays < 0 {
		return fmt.Errorf("invalid analytics.retention_days %d, expected >= 0", c.Analytics.RetentionDays)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	if c.Mail.Enable {
		if c.Mail.ResendKey == "" && c.Mail.Host == "" {
			return errors.New("mail.host or mail.resend_key is required when mail is enabled")
		}
		if c.Mail.ResetURL == "" {
			return errors.New("mail.reset_url is required when mail is enabled")
		}
	}
	if c.Storage.MaxUploadMB < 1 {
		return fmt.Errorf("invalid storage.max_upload_mb %d, expected >= 1", c.Storage.MaxUploadMB)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// JWTTTL is the lifetime of issued login tokens.
func (c *AppConfig) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// Location is the zone used for calendar-based ids. Empty means UTC.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Log.Dir, "logs")
}

// CacheTTL is how long chart reports stay in redis; zero disables caching.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Analytics.CacheTTLSeconds) * time.Second
}

// MaxUploadBytes is the upload size ceiling derived from storage.max_upload_mb.
func (c StorageConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
