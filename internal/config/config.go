package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxth/mediadl/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	Host                string
	OutputRoot          string
	IndexPath           string
	LogLevel            string
	LogFormat           string
	YtDlpBinary         string
	PythonBinary        string
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyAPIURL       string
	SpotifyAuthURL      string
	SpotifyFormat       string
	BrandPrefix         string
	JobStore            string
	DBPath              string
	ProfilesFile        string
	JobTTL              time.Duration
	MetadataCacheTTL    time.Duration

	// parse errors collected by Load, reported by Validate
	loadErrs []string
}

// LoadDotEnv loads variables from an optional .env file. A missing file is
// not an error; variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	c := &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		Host:                getEnv("HOST", constants.DefaultHost),
		OutputRoot:          getEnv("OUTPUT_ROOT", constants.DefaultOutputRoot),
		IndexPath:           getEnv("INDEX_PATH", constants.DefaultIndexPath),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		YtDlpBinary:         getEnv("YTDLP_BIN", constants.DefaultYtDlpBinary),
		PythonBinary:        getEnv("PYTHON_BIN", constants.DefaultPythonBinary),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyAPIURL:       getEnv("SPOTIFY_API_URL", constants.DefaultSpotifyAPIURL),
		SpotifyAuthURL:      getEnv("SPOTIFY_AUTH_URL", constants.DefaultSpotifyAuthURL),
		SpotifyFormat:       getEnv("SPOTIFY_FORMAT", constants.DefaultSpotifyFormat),
		BrandPrefix:         getEnv("BRAND_PREFIX", constants.DefaultBrandPrefix),
		JobStore:            getEnv("JOB_STORE", constants.DefaultJobStore),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		ProfilesFile:        getEnv("PROFILES_FILE", ""),
	}
	c.JobTTL = c.getDuration("JOB_TTL", 0)
	c.MetadataCacheTTL = c.getDuration("METADATA_CACHE_TTL", constants.DefaultMetadataCacheTTL)
	return c
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	errs := append([]string(nil), c.loadErrs...)

	if c.Port == "" {
		errs = append(errs, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.OutputRoot == "" {
		errs = append(errs, "OUTPUT_ROOT cannot be empty")
	}

	if c.YtDlpBinary == "" {
		errs = append(errs, "YTDLP_BIN cannot be empty")
	}

	if c.PythonBinary == "" {
		errs = append(errs, "PYTHON_BIN cannot be empty")
	}

	if c.BrandPrefix == "" || strings.ContainsAny(c.BrandPrefix, constants.InvalidPathChars) {
		errs = append(errs, fmt.Sprintf("BRAND_PREFIX must be non-empty and free of path characters, got: %q", c.BrandPrefix))
	}

	validFormats := map[string]bool{"mp3": true, "flac": true}
	if !validFormats[c.SpotifyFormat] {
		errs = append(errs, fmt.Sprintf("SPOTIFY_FORMAT must be one of: mp3, flac, got: %s", c.SpotifyFormat))
	}

	switch c.JobStore {
	case constants.JobStoreMemory:
	case constants.JobStoreSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty when JOB_STORE=sqlite")
		}
	default:
		errs = append(errs, fmt.Sprintf("JOB_STORE must be one of: memory, sqlite, got: %s", c.JobStore))
	}

	if c.JobTTL < 0 {
		errs = append(errs, "JOB_TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SpotifyEnabled reports whether credentials for the metadata API are set.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration parses a duration variable. An unparsable value is recorded
// for Validate and the default is kept.
func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.loadErrs = append(c.loadErrs, fmt.Sprintf("%s must be a valid duration, got: %s", key, value))
		return fallback
	}
	return d
}
