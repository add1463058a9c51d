package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxth/mediadl/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.OutputRoot != constants.DefaultOutputRoot {
		t.Errorf("Expected OutputRoot to be %s, got %s", constants.DefaultOutputRoot, cfg.OutputRoot)
	}

	if cfg.JobStore != constants.JobStoreMemory {
		t.Errorf("Expected JobStore to be %s, got %s", constants.JobStoreMemory, cfg.JobStore)
	}

	if cfg.JobTTL != 0 {
		t.Errorf("Expected JobTTL to default to 0, got %v", cfg.JobTTL)
	}

	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Expected Addr to be 0.0.0.0:5000, got %s", cfg.Addr())
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OUTPUT_ROOT", "/tmp/media")
	t.Setenv("JOB_STORE", "sqlite")
	t.Setenv("JOB_TTL", "24h")
	t.Setenv("METADATA_CACHE_TTL", "1h")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/media", cfg.OutputRoot)
	assert.Equal(t, constants.JobStoreSQLite, cfg.JobStore)
	assert.Equal(t, 24*time.Hour, cfg.JobTTL)
	assert.Equal(t, time.Hour, cfg.MetadataCacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadInvalidDurationFailsValidate(t *testing.T) {
	t.Setenv("JOB_TTL", "a day")
	t.Setenv("METADATA_CACHE_TTL", "not-a-duration")

	cfg := Load()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_TTL must be a valid duration, got: a day")
	assert.Contains(t, err.Error(), "METADATA_CACHE_TTL must be a valid duration, got: not-a-duration")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:          "5000",
			OutputRoot:    "project",
			YtDlpBinary:   "yt-dlp",
			PythonBinary:  "python3",
			BrandPrefix:   "Maxth Downloader",
			SpotifyFormat: "mp3",
			JobStore:      "memory",
			LogLevel:      "info",
			LogFormat:     "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT cannot be empty"},
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "abc" }, wantErr: "PORT must be a valid number"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "PORT must be between"},
		{name: "empty output root", mutate: func(c *Config) { c.OutputRoot = "" }, wantErr: "OUTPUT_ROOT"},
		{name: "brand with slash", mutate: func(c *Config) { c.BrandPrefix = "a/b" }, wantErr: "BRAND_PREFIX"},
		{name: "bad spotify format", mutate: func(c *Config) { c.SpotifyFormat = "ogg" }, wantErr: "SPOTIFY_FORMAT"},
		{name: "unknown job store", mutate: func(c *Config) { c.JobStore = "redis" }, wantErr: "JOB_STORE"},
		{name: "sqlite without path", mutate: func(c *Config) { c.JobStore = "sqlite"; c.DBPath = "" }, wantErr: "DB_PATH"},
		{name: "negative ttl", mutate: func(c *Config) { c.JobTTL = -time.Second }, wantErr: "JOB_TTL"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSpotifyEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SpotifyEnabled())

	cfg.SpotifyClientID = "id"
	assert.False(t, cfg.SpotifyEnabled())

	cfg.SpotifyClientSecret = "secret"
	assert.True(t, cfg.SpotifyEnabled())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MEDIADL_TEST_DOTENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MEDIADL_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("MEDIADL_TEST_DOTENV"))
}

func TestLoadProfiles(t *testing.T) {
	pf, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Empty(t, pf.Platforms)

	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	doc := `platforms:
  youtube-video:
    phase: "Downloading video (1080p max)..."
    format_args: ["-f", "best[height<=1080]"]
  tiktok:
    tool: /usr/local/bin/yt-dlp
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	pf, err = LoadProfiles(path)
	require.NoError(t, err)
	require.Contains(t, pf.Platforms, "youtube-video")
	assert.Equal(t, []string{"-f", "best[height<=1080]"}, pf.Platforms["youtube-video"].FormatArgs)
	assert.Equal(t, "/usr/local/bin/yt-dlp", pf.Platforms["tiktok"].Tool)

	_, err = LoadProfiles(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read profiles file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("platforms: [unclosed"), 0o644))
	_, err = LoadProfiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse profiles file")
}
