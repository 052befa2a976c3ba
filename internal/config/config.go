// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types, and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for every optional block.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any value is read below.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the PORTFOLIO_ prefix. The prefix is removed,
	the rest is lowercased and a double underscore marks nesting:

		PORTFOLIO_SERVER__PORT            -> server.port
		PORTFOLIO_AUTH__JWT_SECRET        -> auth.jwt_secret
		PORTFOLIO_UPLOAD__S3__BUCKET      -> upload.s3.bucket

	A handful of un-prefixed platform variables (PORT, MONGODB_URI,
	JWT_SECRET, NODE_ENV, UPLOAD_DIR, MAX_FILE_SIZE, VERCEL,
	AWS_LAMBDA_FUNCTION_NAME) are honoured as fallbacks so existing
	deployments keep working.
*/

// EnvPrefix is the prefix every application variable carries.
const EnvPrefix = "PORTFOLIO_"

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Upload        UploadConfig         `koanf:"upload" validate:"required"`
	Translations  TranslationsConfig   `koanf:"translations"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// Serverless disables the startup database dial and static serving of
	// uploaded files; the local filesystem does not persist there.
	Serverless bool `koanf:"serverless"`

	// PublicURL is the externally visible base URL used to build fully
	// qualified upload links. Empty means "derive from the request".
	PublicURL string `koanf:"public_url"`
}

// DatabaseConfig selects the document store backend and its settings.
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=mongo postgres memory"`

	// URI is the MongoDB connection string.
	URI  string `koanf:"uri"`
	Name string `koanf:"name" validate:"required"`

	ServerSelectionTimeout time.Duration `koanf:"server_selection_timeout"`
	SocketTimeout          time.Duration `koanf:"socket_timeout"`

	Postgres PostgresConfig `koanf:"postgres"`
}

// PostgresConfig contains PostgreSQL connection parameters and pool tuning.
// Only read when Driver is "postgres".
type PostgresConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// AuthConfig stores authentication-related secrets and the provisioning
// identity of the single administrator.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"required"`

	// InitSecret guards /api/auth/init. Empty disables the endpoint.
	InitSecret string `koanf:"init_secret"`

	AdminUsername string `koanf:"admin_username"`
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	// LoginRateLimit is the number of login attempts allowed per client per
	// minute. Zero disables limiting.
	LoginRateLimit int `koanf:"login_rate_limit" validate:"min=0"`
}

// HasAdminIdentity reports whether a full provisioning identity is configured.
func (a AuthConfig) HasAdminIdentity() bool {
	return a.AdminUsername != "" && a.AdminEmail != "" && a.AdminPassword != ""
}

// UploadConfig controls where uploaded files go and how large they may be.
type UploadConfig struct {
	Driver          string   `koanf:"driver" validate:"required,oneof=local s3"`
	Dir             string   `koanf:"dir" validate:"required"`
	MaxImageSize    int64    `koanf:"max_image_size" validate:"min=1"`
	MaxDocumentSize int64    `koanf:"max_document_size" validate:"min=1"`
	S3              S3Config `koanf:"s3"`
}

// S3Config describes an S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	KeyPrefix string `koanf:"key_prefix"`

	// PublicBaseURL is prepended to object keys to form public links.
	PublicBaseURL string `koanf:"public_base_url"`
}

// TranslationsConfig points the translation importer at its source tree.
type TranslationsConfig struct {
	SourceDir string `koanf:"source_dir"`
}

// IsProduction reports whether the application runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}

// Default returns the configuration used before any environment is applied.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8081",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:                 "mongo",
			URI:                    "mongodb://localhost:27017/portfolio",
			Name:                   "portfolio",
			ServerSelectionTimeout: 5 * time.Second,
			SocketTimeout:          45 * time.Second,
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				Name:            "portfolio",
				SSLMode:         "disable",
				MaxOpenConns:    10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 3600,
				ConnMaxIdleTime: 300,
			},
		},
		Auth: AuthConfig{
			TokenTTL:       7 * 24 * time.Hour,
			LoginRateLimit: 10,
		},
		Upload: UploadConfig{
			Driver:          "local",
			Dir:             "./uploads",
			MaxImageSize:    5 << 20,
			MaxDocumentSize: 10 << 20,
			S3:              S3Config{Region: "auto"},
		},
		Translations: TranslationsConfig{SourceDir: "./locales"},
	}
}

// LoadConfig loads configuration from environment variables on top of
// Default(), validates it, applies observability defaults, and returns it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	applyPlatformEnv(mainConfig, os.LookupEnv)

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs struct-tag validation plus the cross-field rules tags
// cannot express, and fills in the observability block.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for the mongo driver")
		}
	case "postgres":
		pg := c.Database.Postgres
		if pg.Host == "" || pg.User == "" || pg.Name == "" {
			return fmt.Errorf("database.postgres host, user and name are required for the postgres driver")
		}
	}

	if c.Upload.Driver == "s3" && c.Upload.S3.Bucket == "" {
		return fmt.Errorf("upload.s3.bucket is required for the s3 upload driver")
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = "portfolio-api"
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

// applyPlatformEnv honours the un-prefixed variables older deployments set.
// A prefixed variable for the same key always wins.
func applyPlatformEnv(c *Config, lookup func(string) (string, bool)) {
	fallback := func(prefixedKey, plainKey string) (string, bool) {
		if _, ok := lookup(EnvPrefix + prefixedKey); ok {
			return "", false
		}
		v, ok := lookup(plainKey)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := fallback("SERVER__PORT", "PORT"); ok {
		c.Server.Port = v
	}
	if v, ok := fallback("DATABASE__URI", "MONGODB_URI"); ok {
		c.Database.URI = v
	}
	if v, ok := fallback("PRIMARY__ENV", "NODE_ENV"); ok {
		c.Primary.Env = v
	}
	if v, ok := fallback("AUTH__JWT_SECRET", "JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := fallback("UPLOAD__DIR", "UPLOAD_DIR"); ok {
		c.Upload.Dir = v
	}
	if v, ok := fallback("UPLOAD__MAX_DOCUMENT_SIZE", "MAX_FILE_SIZE"); ok {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			c.Upload.MaxDocumentSize = size
		}
	}
	if v, ok := lookup("VERCEL"); ok && v == "1" {
		c.Server.Serverless = true
	}
	if v, ok := lookup("AWS_LAMBDA_FUNCTION_NAME"); ok && v != "" {
		c.Server.Serverless = true
	}
}
