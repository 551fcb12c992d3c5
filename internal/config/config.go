package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	Locator LocatorConfig
	Export  ExportConfig
	CORS    CORSConfig
	Queue   QueueConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LocatorProviderConfig holds settings for a single OCR backend.
type LocatorProviderConfig struct {
	Provider      string  `mapstructure:"provider"`
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	Endpoint      string  `mapstructure:"endpoint"`
	Language      string  `mapstructure:"language"`
	TimeoutSecs   int     `mapstructure:"timeout_secs"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// LocatorConfig holds OCR backend settings with multi-provider support.
// Providers are tried in the order primary, secondary, tertiary.
type LocatorConfig struct {
	Primary   LocatorProviderConfig `mapstructure:"primary"`
	Secondary LocatorProviderConfig `mapstructure:"secondary"`
	Tertiary  LocatorProviderConfig `mapstructure:"tertiary"`
}

// Configured returns the provider configs that have a provider name set,
// in priority order.
func (l *LocatorConfig) Configured() []*LocatorProviderConfig {
	var out []*LocatorProviderConfig
	for _, cfg := range []*LocatorProviderConfig{&l.Primary, &l.Secondary, &l.Tertiary} {
		if cfg.Provider != "" {
			out = append(out, cfg)
		}
	}
	return out
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	SheetName string `mapstructure:"sheet_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the SCANTAB_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCANTAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "scantab")
	v.SetDefault("db.password", "scantab_secret")
	v.SetDefault("db.name", "scantab_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "scantab-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Export defaults
	v.SetDefault("export.sheet_name", "Report")

	// Locator defaults: tesseract as local-first primary, cloud backends
	// opt-in via explicit configuration.
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("locator."+tier+".provider", "")
		v.SetDefault("locator."+tier+".api_key", "")
		v.SetDefault("locator."+tier+".model", "")
		v.SetDefault("locator."+tier+".endpoint", "")
		v.SetDefault("locator."+tier+".language", "eng")
		v.SetDefault("locator."+tier+".timeout_secs", 60)
		v.SetDefault("locator."+tier+".min_confidence", 0.2)
	}
	v.SetDefault("locator.primary.provider", "tesseract")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "SCANTAB_SERVER_PORT",
		"server.read_timeout":      "SCANTAB_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "SCANTAB_SERVER_WRITE_TIMEOUT",
		"server.environment":       "SCANTAB_SERVER_ENVIRONMENT",
		"db.host":                  "SCANTAB_DB_HOST",
		"db.port":                  "SCANTAB_DB_PORT",
		"db.user":                  "SCANTAB_DB_USER",
		"db.password":              "SCANTAB_DB_PASSWORD",
		"db.name":                  "SCANTAB_DB_NAME",
		"db.sslmode":               "SCANTAB_DB_SSLMODE",
		"db.max_open":              "SCANTAB_DB_MAX_OPEN",
		"db.max_idle":              "SCANTAB_DB_MAX_IDLE",
		"s3.region":                "SCANTAB_S3_REGION",
		"s3.bucket":                "SCANTAB_S3_BUCKET",
		"s3.endpoint":              "SCANTAB_S3_ENDPOINT",
		"s3.access_key":            "SCANTAB_S3_ACCESS_KEY",
		"s3.secret_key":            "SCANTAB_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "SCANTAB_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "SCANTAB_S3_PRESIGN_EXPIRY",
		"log.level":                "SCANTAB_LOG_LEVEL",
		"log.format":               "SCANTAB_LOG_FORMAT",
		"cors.allowed_origins":     "SCANTAB_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "SCANTAB_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "SCANTAB_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "SCANTAB_QUEUE_CONCURRENCY",
		"export.sheet_name":        "SCANTAB_EXPORT_SHEET_NAME",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		prefix := "SCANTAB_LOCATOR_" + strings.ToUpper(tier) + "_"
		envBindings["locator."+tier+".provider"] = prefix + "PROVIDER"
		envBindings["locator."+tier+".api_key"] = prefix + "API_KEY"
		envBindings["locator."+tier+".model"] = prefix + "MODEL"
		envBindings["locator."+tier+".endpoint"] = prefix + "ENDPOINT"
		envBindings["locator."+tier+".language"] = prefix + "LANGUAGE"
		envBindings["locator."+tier+".timeout_secs"] = prefix + "TIMEOUT_SECS"
		envBindings["locator."+tier+".min_confidence"] = prefix + "MIN_CONFIDENCE"
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SCANTAB_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SCANTAB_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	loadProvider := func(tier string) LocatorProviderConfig {
		return LocatorProviderConfig{
			Provider:      v.GetString("locator." + tier + ".provider"),
			APIKey:        v.GetString("locator." + tier + ".api_key"),
			Model:         v.GetString("locator." + tier + ".model"),
			Endpoint:      v.GetString("locator." + tier + ".endpoint"),
			Language:      v.GetString("locator." + tier + ".language"),
			TimeoutSecs:   v.GetInt("locator." + tier + ".timeout_secs"),
			MinConfidence: v.GetFloat64("locator." + tier + ".min_confidence"),
		}
	}
	cfg.Locator = LocatorConfig{
		Primary:   loadProvider("primary"),
		Secondary: loadProvider("secondary"),
		Tertiary:  loadProvider("tertiary"),
	}

	cfg.Export = ExportConfig{
		SheetName: v.GetString("export.sheet_name"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	return cfg, nil
}
