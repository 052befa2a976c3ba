package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPlatformEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "MONGODB_URI", "NODE_ENV", "JWT_SECRET", "UPLOAD_DIR", "MAX_FILE_SIZE", "VERCEL", "AWS_LAMBDA_FUNCTION_NAME"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("PORTFOLIO_AUTH__JWT_SECRET", "secret")
	t.Setenv("PORTFOLIO_SERVER__PORT", "9000")
	t.Setenv("PORTFOLIO_AUTH__TOKEN_TTL", "1h")
	t.Setenv("PORTFOLIO_AUTH__LOGIN_RATE_LIMIT", "5")
	t.Setenv("PORTFOLIO_UPLOAD__S3__REGION", "eu-central-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Auth.LoginRateLimit)
	assert.Equal(t, "eu-central-1", cfg.Upload.S3.Region)

	assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageSize)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("PORTFOLIO_AUTH__JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestApplyPlatformEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                       "3000",
		"MONGODB_URI":                "mongodb://db:27017/site",
		"NODE_ENV":                   "production",
		"JWT_SECRET":                 "plain",
		"PORTFOLIO_AUTH__JWT_SECRET": "prefixed",
		"MAX_FILE_SIZE":              "2048",
		"VERCEL":                     "1",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	cfg.Auth.JWTSecret = "prefixed"
	applyPlatformEnv(cfg, lookup)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017/site", cfg.Database.URI)
	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "prefixed", cfg.Auth.JWTSecret, "prefixed variable wins")
	assert.Equal(t, int64(2048), cfg.Upload.MaxDocumentSize)
	assert.True(t, cfg.Server.Serverless)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with secret",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown database driver",
			mutate:  func(c *Config) { c.Database.Driver = "redis" },
			wantErr: "config validation failed",
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *Config) { c.Database.URI = "" },
			wantErr: "database.uri",
		},
		{
			name: "postgres without user",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
			},
			wantErr: "database.postgres",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Upload.Driver = "s3" },
			wantErr: "upload.s3.bucket",
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Observability = DefaultObservabilityConfig()
				c.Observability.Logging.Level = "loud"
			},
			wantErr: "invalid observability config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, cfg.Primary.Env, cfg.Observability.Environment)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
