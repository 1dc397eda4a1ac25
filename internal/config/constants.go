package config

import "time"

// Remote backend modes
const (
	RemoteModeREST     = "rest"
	RemoteModePostgres = "postgres"
)

// Environment variable names
const (
	EnvPort                      = "PORT"
	EnvBindAddress               = "BIND_ADDRESS"
	EnvLocalAPIKey               = "LOCAL_API_KEY"
	EnvLogLevel                  = "LOG_LEVEL"
	EnvLogFormat                 = "LOG_FORMAT"
	EnvLogDir                    = "LOG_DIR"
	EnvEnvironment               = "ENVIRONMENT"
	EnvServiceName               = "SERVICE_NAME"
	EnvVersion                   = "VERSION"
	EnvDataDir                   = "DATA_DIR"
	EnvTerminalID                = "TERMINAL_ID"
	EnvRemoteMode                = "REMOTE_MODE"
	EnvRemoteURL                 = "REMOTE_URL"
	EnvRemoteGatewayKey          = "REMOTE_GATEWAY_KEY"
	EnvRemoteDBURL               = "REMOTE_DB_URL"
	EnvAuthRefreshToken          = "AUTH_REFRESH_TOKEN"
	EnvSyncInterval              = "SYNC_INTERVAL"
	EnvSyncRetryBaseDelay        = "SYNC_RETRY_BASE_DELAY"
	EnvSyncMaxAttempts           = "SYNC_MAX_ATTEMPTS"
	EnvSyncAttemptsPerCycle      = "SYNC_ATTEMPTS_PER_CYCLE"
	EnvConnectivityProbeInterval = "CONNECTIVITY_PROBE_INTERVAL"
	EnvConnectivityDebounce      = "CONNECTIVITY_DEBOUNCE"
	EnvVarianceAlertThreshold    = "VARIANCE_ALERT_THRESHOLD"
	EnvVarianceHighThreshold     = "VARIANCE_HIGH_THRESHOLD"
	EnvReconcileLegacyCutoff     = "RECONCILE_LEGACY_CUTOFF"
	EnvDeadLetterPath            = "DEAD_LETTER_PATH"
)

// Defaults
const (
	DefaultPort                      = 8080
	DefaultBindAddress               = "127.0.0.1"
	DefaultLogLevel                  = "info"
	DefaultLogFormat                 = "text"
	DefaultLogDir                    = "logs"
	DefaultEnvironment               = "dev"
	DefaultServiceName               = "tillsync"
	DefaultVersion                   = "dev"
	DefaultDataDir                   = "data"
	DefaultTerminalID                = "till-01"
	DefaultSyncInterval              = 30 * time.Second
	DefaultSyncRetryBaseDelay        = time.Second
	DefaultSyncMaxAttempts           = 5
	DefaultSyncAttemptsPerCycle      = 3
	DefaultConnectivityProbeInterval = 15 * time.Second
	DefaultConnectivityDebounce      = 2 * time.Second
	DefaultVarianceAlertThreshold    = 1000
	DefaultVarianceHighThreshold     = 5000
	DefaultDeadLetterFile            = "deadletter.jsonl"
	DefaultLocalDBFile               = "tillsync.db"
)
