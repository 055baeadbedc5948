package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"

	defaultDBDriver   = "postgres"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 5432
	defaultDBUser     = "postgres"
	defaultDBPassword = "postgres"
	defaultDBName     = "xyz_portal"
	defaultDBSSLMode  = "disable"
	defaultDBMaxOpen  = 25
	defaultDBMaxIdle  = 5

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultStorageRegion  = "us-east-1"
	defaultStorageBucket  = "portal-bucket"
	defaultMaxUploadMB    = 10
	defaultJWTTTLHours    = 24
	defaultLogLevel       = "info"
	defaultLogRotateSize  = 50
	defaultLogRotateKeep  = 7
	defaultBatchSize      = 100
	maxBatchSize          = 1000
	defaultIngestPerMin   = 600
	defaultCacheTTLSecond = 60
)
