package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:  8080,
			RateLimit: 10,
			RateBurst: 20,
		},
		Redis: RedisConfig{
			Addresses:    []string{"localhost:6379"},
			DB:           0,
			MaxRetries:   3,
			PoolSize:     20,
			MinIdleConns: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Timecode: TimecodeConfig{
			DefaultFrameRate:    "29.97",
			MaxExpressionLength: 1024,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name: "cert files not found",
			mutate: func(c *Config) {
				c.Server.EnableHTTP3 = true
				c.Server.HTTP3Port = 8443
				c.Server.TLSCertFile = "/nonexistent/cert.pem"
				c.Server.TLSKeyFile = "/nonexistent/key.pem"
				c.Server.MaxIncomingStreams = 100
			},
			wantErr: true,
			errMsg:  "TLS certificate file not found",
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
			errMsg:  "server config: invalid HTTP port",
		},
		{
			name:    "unknown default frame rate",
			mutate:  func(c *Config) { c.Timecode.DefaultFrameRate = "31" },
			wantErr: true,
			errMsg:  "timecode config: default_frame_rate",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
			errMsg:  "logging config: invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  http_port: 9000
  read_timeout: 15s
  rate_limit: 5
  rate_burst: 10
redis:
  addresses:
    - "redis:6379"
  db: 2
logging:
  level: "debug"
  format: "text"
timecode:
  default_frame_rate: "59.94"
  mark_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, []string{"redis:6379"}, cfg.Redis.Addresses)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "59.94", cfg.Timecode.DefaultFrameRate)
	assert.Equal(t, time.Hour, cfg.Timecode.MarkTTL)
	assert.Equal(t, 1024, cfg.Timecode.MaxExpressionLength)

	fr, err := cfg.Timecode.FrameRate()
	require.NoError(t, err)
	assert.True(t, fr.IsDropFrame())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.False(t, cfg.Server.EnableHTTP3)
	assert.Equal(t, "29.97", cfg.Timecode.DefaultFrameRate)
	assert.Equal(t, time.Duration(0), cfg.Timecode.MarkTTL)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("STIMECODE_SERVER_HTTP_PORT", "9191")
	t.Setenv("STIMECODE_TIMECODE_DEFAULT_FRAME_RATE", "25")
	t.Setenv("STIMECODE_TIMECODE_FORCE_NON_DROP_FRAME", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.HTTPPort)
	assert.Equal(t, "25", cfg.Timecode.DefaultFrameRate)
	assert.True(t, cfg.Timecode.ForceNonDropFrame)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestTimecodeFrameRateForceNonDrop(t *testing.T) {
	tc := TimecodeConfig{DefaultFrameRate: "29.97", ForceNonDropFrame: true, MaxExpressionLength: 10}
	fr, err := tc.FrameRate()
	require.NoError(t, err)
	assert.False(t, fr.IsDropFrame())
	assert.Equal(t, int64(30), fr.RoundedFPS())
}

func TestLoadShippedDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg, "configs/default.yaml mirrors the built-in defaults")
}
