// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DatabaseConfig holds the PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host               string `koanf:"host"`
	Port               string `koanf:"port"`
	User               string `koanf:"user"`
	Password           string `koanf:"password"`
	Name               string `koanf:"name"`
	SSLMode            string `koanf:"ssl_mode"`
	MaxOpenConns       int    `koanf:"max_open_conns"`
	MaxIdleConns       int    `koanf:"max_idle_conns"`
	ConnMaxLifetimeSec int    `koanf:"conn_max_lifetime_sec"`
	// AutoMigrate creates the customers and people tables at startup when they are missing.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// MinIOConfig points at the S3-compatible bucket that receives exports.
// Exports are disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	// ExportURLExpirySec is the lifetime of presigned export download URLs.
	ExportURLExpirySec int `koanf:"export_url_expiry_sec"`
}

// Enabled reports whether object storage has been configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// LogConfig controls the application logger.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" (default) or "console".
	Format string `koanf:"format"`
}

// AppConfig is everything the api binary needs to start.
type AppConfig struct {
	AppHost  string         `koanf:"app_host"`
	Port     string         `koanf:"port"`
	Timezone string         `koanf:"timezone"`
	Database DatabaseConfig `koanf:"database"`
	MinIO    MinIOConfig    `koanf:"minio"`
	Log      LogConfig      `koanf:"log"`
}

// envKeys maps the supported environment variables to koanf key paths.
var envKeys = map[string]string{
	"APP_HOST":     "app_host",
	"PORT":         "port",
	"APP_TIMEZONE": "timezone",

	"DB_HOST":                  "database.host",
	"DB_PORT":                  "database.port",
	"DB_USER":                  "database.user",
	"DB_PASSWORD":              "database.password",
	"DB_NAME":                  "database.name",
	"DB_SSLMODE":               "database.ssl_mode",
	"DB_MAX_OPEN_CONNS":        "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":        "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME_SEC": "database.conn_max_lifetime_sec",
	"DB_AUTO_MIGRATE":          "database.auto_migrate",

	"MINIO_ENDPOINT":        "minio.endpoint",
	"MINIO_ACCESS_KEY":      "minio.access_key",
	"MINIO_SECRET_KEY":      "minio.secret_key",
	"MINIO_BUCKET":          "minio.bucket",
	"MINIO_REGION":          "minio.region",
	"MINIO_USE_SSL":         "minio.use_ssl",
	"EXPORT_URL_EXPIRY_SEC": "minio.export_url_expiry_sec",

	"LOG_LEVEL":  "log.level",
	"LOG_FORMAT": "log.format",
}

// Defaults returns the configuration used for every unset variable.
func Defaults() *AppConfig {
	return &AppConfig{
		AppHost:  "localhost:8080",
		Port:     "8080",
		Timezone: "UTC",
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
			AutoMigrate:        true,
		},
		MinIO: MinIOConfig{
			Bucket:             "peopleapi-exports",
			Region:             "us-east-1",
			ExportURLExpirySec: 900,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from environment variables on top of Defaults.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the file.
//
// Blank variables count as unset. Numbers and booleans that do not parse
// keep their default.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		path, ok := envKeys[key]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return "", nil
		}
		return path, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load environment: %w", err)
	}

	cfg := Defaults()
	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       keepDefaultOnParseError,
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return cfg, nil
}

// keepDefaultOnParseError leaves the current field value in place when an
// environment string cannot be read as the field's int or bool type.
func keepDefaultOnParseError(from, to reflect.Value) (any, error) {
	s, ok := from.Interface().(string)
	if !ok {
		return from.Interface(), nil
	}

	var err error
	switch to.Kind() {
	case reflect.Int:
		_, err = strconv.Atoi(s)
	case reflect.Bool:
		_, err = strconv.ParseBool(s)
	}
	if err != nil {
		return to.Interface(), nil
	}
	return s, nil
}
