package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int `validate:"min=1,max=65535"`
	BindAddress string
	// LocalAPIKey guards the local API; empty disables the check (dev tills)
	LocalAPIKey string
	LogLevel    string `validate:"oneof=debug info warn warning error DEBUG INFO WARN ERROR"`
	LogFormat   string `validate:"oneof=json text"`
	LogDir      string `validate:"required"`
	Environment string `validate:"required"`
	ServiceName string `validate:"required"`
	Version     string
	DataDir     string `validate:"required"`
	TerminalID  string `validate:"required,max=64"`

	// Remote system of record
	RemoteMode       string `validate:"oneof=rest postgres"`
	RemoteURL        string `validate:"required_if=RemoteMode rest"`
	RemoteGatewayKey string
	RemoteDBURL      string `validate:"required_if=RemoteMode postgres"`
	AuthRefreshToken string

	// Sync engine
	SyncInterval         time.Duration `validate:"min=1s"`
	SyncRetryBaseDelay   time.Duration `validate:"min=0"`
	SyncMaxAttempts      int           `validate:"min=1"`
	SyncAttemptsPerCycle int           `validate:"min=1"`

	// Connectivity; a zero probe interval disables the active probe
	ConnectivityProbeInterval time.Duration `validate:"min=0"`
	ConnectivityDebounce      time.Duration `validate:"min=0"`

	// Reconciliation
	VarianceAlertThreshold int64 `validate:"min=0"`
	VarianceHighThreshold  int64 `validate:"gtefield=VarianceAlertThreshold"`
	// ReconcileLegacyCutoff bounds the staff/time-window sales fallback to
	// shifts started before it. Nil leaves the fallback always enabled.
	ReconcileLegacyCutoff *time.Time

	DeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		BindAddress:      getEnv(EnvBindAddress, DefaultBindAddress),
		LocalAPIKey:      getEnv(EnvLocalAPIKey, ""),
		LogLevel:         getEnv(EnvLogLevel, DefaultLogLevel),
		LogFormat:        getEnv(EnvLogFormat, DefaultLogFormat),
		LogDir:           getEnv(EnvLogDir, DefaultLogDir),
		Environment:      getEnv(EnvEnvironment, DefaultEnvironment),
		ServiceName:      getEnv(EnvServiceName, DefaultServiceName),
		Version:          getEnv(EnvVersion, DefaultVersion),
		DataDir:          getEnv(EnvDataDir, DefaultDataDir),
		TerminalID:       getEnv(EnvTerminalID, DefaultTerminalID),
		RemoteMode:       getEnv(EnvRemoteMode, RemoteModeREST),
		RemoteURL:        getEnv(EnvRemoteURL, ""),
		RemoteGatewayKey: getEnv(EnvRemoteGatewayKey, ""),
		RemoteDBURL:      getEnv(EnvRemoteDBURL, ""),
		AuthRefreshToken: getEnv(EnvAuthRefreshToken, ""),

		SyncInterval:         getEnvAsDuration(EnvSyncInterval, DefaultSyncInterval),
		SyncRetryBaseDelay:   getEnvAsDuration(EnvSyncRetryBaseDelay, DefaultSyncRetryBaseDelay),
		SyncMaxAttempts:      getEnvAsInt(EnvSyncMaxAttempts, DefaultSyncMaxAttempts),
		SyncAttemptsPerCycle: getEnvAsInt(EnvSyncAttemptsPerCycle, DefaultSyncAttemptsPerCycle),

		ConnectivityProbeInterval: getEnvAsDuration(EnvConnectivityProbeInterval, DefaultConnectivityProbeInterval),
		ConnectivityDebounce:      getEnvAsDuration(EnvConnectivityDebounce, DefaultConnectivityDebounce),

		VarianceAlertThreshold: int64(getEnvAsInt(EnvVarianceAlertThreshold, DefaultVarianceAlertThreshold)),
		VarianceHighThreshold:  int64(getEnvAsInt(EnvVarianceHighThreshold, DefaultVarianceHighThreshold)),
	}

	portStr := getEnv(EnvPort, strconv.Itoa(DefaultPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	if raw := getEnv(EnvReconcileLegacyCutoff, ""); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value (want RFC3339): %w", EnvReconcileLegacyCutoff, err)
		}
		cfg.ReconcileLegacyCutoff = &cutoff
	}

	cfg.DeadLetterPath = getEnv(EnvDeadLetterPath, filepath.Join(cfg.DataDir, DefaultDeadLetterFile))

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LocalDBPath returns the path of the terminal's SQLite store
func (c *Config) LocalDBPath() string {
	return filepath.Join(c.DataDir, DefaultLocalDBFile)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default when unset or invalid
func getEnvAsInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvAsDuration parses a Go duration variable, falling back to the default when unset or invalid
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
