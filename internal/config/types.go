package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production"
	AllowedOrigins []string        `yaml:"allowed_origins"`
	JWTSecret      string          `yaml:"jwt_secret"`
	JWTTTLHours    int             `yaml:"jwt_ttl_hours"`
	Timezone       string          `yaml:"timezone"`
	Database       DatabaseConfig  `yaml:"database"`
	Redis          RedisConfig     `yaml:"redis"`
	Storage        StorageConfig   `yaml:"storage"`
	Log            LogConfig       `yaml:"log"`
	Analytics      AnalyticsConfig `yaml:"analytics"`
	Mail           MailConfig      `yaml:"mail"`
}

type DatabaseConfig struct {
	Driver          string            `yaml:"driver"` // "postgres" | "sqlite"
	URL             string            `yaml:"url"`
	Host            string            `yaml:"host"`
	Port            int               `yaml:"port"`
	User            string            `yaml:"user"`
	Password        string            `yaml:"password"`
	Name            string            `yaml:"name"`
	SSLMode         string            `yaml:"sslmode"`
	Path            string            `yaml:"path"` // sqlite file
	MaxOpenConns    int               `yaml:"max_open_conns"`
	MaxIdleConns    int               `yaml:"max_idle_conns"`
	ConnMaxLifetime int               `yaml:"conn_max_lifetime_minutes"`
	AutoMigrate     bool              `yaml:"auto_migrate"`
	Params          map[string]string `yaml:"params"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

// StorageConfig points at an S3-compatible bucket (AWS S3 or MinIO).
type StorageConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
	Bucket      string `yaml:"bucket"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	UseSSL      bool   `yaml:"use_ssl"`
	PathStyle   bool   `yaml:"path_style"`
	PublicURL   string `yaml:"public_url"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

type LogConfig struct {
	Dir          string `yaml:"dir"`
	Level        string `yaml:"level"`
	RotateSizeMB int    `yaml:"rotate_size_mb"`
	RotateKeep   int    `yaml:"rotate_keep"`
	Compress     bool   `yaml:"compress"`
}

type AnalyticsConfig struct {
	BatchSize       int `yaml:"batch_size"`
	RetentionDays   int `yaml:"retention_days"`
	IngestRateLimit int `yaml:"ingest_rate_limit"` // events per minute per IP, 0 disables
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// MailConfig enables reset emails. ResendKey switches delivery from SMTP to
// the Resend API. ResetURL is the link prefix the token is appended to.
type MailConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
	ResetURL  string `yaml:"reset_url"`
}
