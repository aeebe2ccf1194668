package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".harvester"
	DefaultConfigFile = "config.yaml"

	DefaultAPIURL            = "http://localhost:8000"
	DefaultStatusInterval    = 1200 * time.Millisecond
	DefaultReportInterval    = 1500 * time.Millisecond
	DefaultReconnectDelay    = 2 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
	DefaultRequestsPerSecond = 10.0
)

// LogMode selects how job log entries reach the client.
type LogMode string

const (
	// LogModePush streams entries over the /ws/log websocket.
	LogModePush LogMode = "push"
	// LogModePull reads entries from the log field of each status response.
	LogModePull LogMode = "pull"
)

// ParseLogMode validates a log mode string.
func ParseLogMode(s string) (LogMode, error) {
	switch LogMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LogModePush:
		return LogModePush, nil
	case LogModePull:
		return LogModePull, nil
	default:
		return "", fmt.Errorf("invalid log mode %q (expected push or pull)", s)
	}
}

// Config holds the CLI configuration
type Config struct {
	APIURL            string
	WSURL             string // Optional, derived from APIURL when empty
	APIToken          string // Optional bearer token sent with every request
	LogMode           LogMode
	StatusInterval    time.Duration
	ReportInterval    time.Duration
	ReconnectDelay    time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	SkipVersionCheck  bool
	LogLevel          string
	TelemetryEnabled  *bool // Pointer to distinguish between unset (nil) and explicitly set (true/false)
}

// userFacingKeys maps normalized keys to their descriptions.
var userFacingKeys = map[string]string{
	"apiurl":            "Base URL of the harvester API (default: http://localhost:8000)",
	"wsurl":             "Base URL of the log websocket (default: derived from api-url)",
	"apitoken":          "Bearer token sent with every API request (optional)",
	"logmode":           "How job logs are delivered: push (websocket) or pull (status polling)",
	"statusinterval":    "Status poll interval (e.g. 1200ms)",
	"reportinterval":    "Report poll interval while an analysis runs (e.g. 1500ms)",
	"reconnectdelay":    "Delay before reconnecting a dropped log stream (e.g. 2s)",
	"requesttimeout":    "Timeout for a single API request (e.g. 30s)",
	"requestspersecond": "Client-side cap on API requests per second",
	"skipversioncheck":  "Disable the server compatibility check (true/false)",
	"loglevel":          "Logging level (debug/info/warn/error, default: info)",
	"telemetry":         "Enable error telemetry and crash reporting (true/false, default: true)",
}

// envBindings maps normalized keys to environment variables that override them.
var envBindings = map[string]string{
	"apiurl":   "HARVESTER_API_URL",
	"wsurl":    "HARVESTER_WS_URL",
	"apitoken": "HARVESTER_API_TOKEN",
	"logmode":  "HARVESTER_LOG_MODE",
	"loglevel": "HARVESTER_LOG_LEVEL",
}

// NormalizeKey converts a user supplied key (api-url, api_url, apiUrl) to its stored form.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")
	return strings.ToLower(key)
}

// IsValidUserFacingKey checks if a config key is a recognized user-facing key
func IsValidUserFacingKey(key string) bool {
	_, ok := userFacingKeys[key]
	return ok
}

// GetConfigKeyDescription returns a description for a config key
func GetConfigKeyDescription(key string) string {
	return userFacingKeys[key]
}

// GetUserFacingKeys returns the list of keys users should interact with
func GetUserFacingKeys() []string {
	return []string{
		"api-url",
		"ws-url",
		"api-token",
		"log-mode",
		"status-interval",
		"report-interval",
		"reconnect-delay",
		"request-timeout",
		"requests-per-second",
		"skip-version-check",
		"log-level",
		"telemetry",
	}
}

// Load reads the configuration from ~/.harvester/config.yaml
func Load() (*Config, error) {
	viper.Reset()

	// Set up Viper to read from ~/.harvester/config.yaml
	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("apiurl", DefaultAPIURL)
	viper.SetDefault("logmode", string(LogModePush))
	viper.SetDefault("statusinterval", DefaultStatusInterval)
	viper.SetDefault("reportinterval", DefaultReportInterval)
	viper.SetDefault("reconnectdelay", DefaultReconnectDelay)
	viper.SetDefault("requesttimeout", DefaultRequestTimeout)
	viper.SetDefault("requestspersecond", DefaultRequestsPerSecond)

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		// Written empty so that defaults stay defaults instead of being pinned to disk
		if err := os.WriteFile(configPath, nil, 0o600); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	// Read the config
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	logMode, err := ParseLogMode(viper.GetString("logmode"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		APIURL:            strings.TrimRight(viper.GetString("apiurl"), "/"),
		WSURL:             strings.TrimRight(viper.GetString("wsurl"), "/"),
		APIToken:          viper.GetString("apitoken"),
		LogMode:           logMode,
		StatusInterval:    viper.GetDuration("statusinterval"),
		ReportInterval:    viper.GetDuration("reportinterval"),
		ReconnectDelay:    viper.GetDuration("reconnectdelay"),
		RequestTimeout:    viper.GetDuration("requesttimeout"),
		RequestsPerSecond: viper.GetFloat64("requestspersecond"),
		SkipVersionCheck:  viper.GetBool("skipversioncheck"),
		LogLevel:          viper.GetString("loglevel"),
	}

	// Handle telemetry setting - use pointer to distinguish unset from false
	if viper.IsSet("telemetry") {
		telemetryEnabled := viper.GetBool("telemetry")
		config.TelemetryEnabled = &telemetryEnabled
	}

	return config, nil
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	// Check environment variable first (highest priority)
	if envVal := os.Getenv("HARVESTER_TELEMETRY_DISABLED"); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.TelemetryEnabled != nil {
		return *c.TelemetryEnabled
	}

	return true
}

// Save writes the current configuration to disk
func Save(config *Config) error {
	viper.Set("apiurl", config.APIURL)
	viper.Set("wsurl", config.WSURL)
	viper.Set("apitoken", config.APIToken)
	viper.Set("logmode", string(config.LogMode))
	viper.Set("statusinterval", config.StatusInterval.String())
	viper.Set("reportinterval", config.ReportInterval.String())
	viper.Set("reconnectdelay", config.ReconnectDelay.String())
	viper.Set("requesttimeout", config.RequestTimeout.String())
	viper.Set("requestspersecond", config.RequestsPerSecond)
	viper.Set("skipversioncheck", config.SkipVersionCheck)
	viper.Set("loglevel", config.LogLevel)

	if config.TelemetryEnabled != nil {
		viper.Set("telemetry", *config.TelemetryEnabled)
	}

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the full path to the config file
func Path() string {
	return getConfigPath()
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	if path := os.Getenv("HARVESTER_CONFIG_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
// This is needed by root.go to store the config in context
func GetContextKey() interface{} {
	return configContextKey
}

// LogStreamURL returns the websocket base URL. When ws-url is not configured it is
// derived from the API URL by swapping http for ws and https for wss.
func (c *Config) LogStreamURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}

	switch {
	case strings.HasPrefix(c.APIURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.APIURL, "https://")
	case strings.HasPrefix(c.APIURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.APIURL, "http://")
	default:
		return c.APIURL
	}
}

// ensureConfigDir ensures the config directory exists
func ensureConfigDir() error {
	configPath := getConfigPath()
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755) //nolint:gosec // Config directory needs standard permissions
}

// GetLogLevel returns the configured log level as slog.Level
// Defaults to Info if not set or invalid
func (c *Config) GetLogLevel() slog.Level {
	if c.LogLevel == "" {
		return slog.LevelInfo
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
