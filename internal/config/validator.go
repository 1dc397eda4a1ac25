package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the loaded configuration against its struct rules
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Warnings returns non-fatal configuration issues worth logging at startup
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.RemoteMode == RemoteModeREST {
		if cfg.RemoteGatewayKey == "" {
			warnings = append(warnings, "REMOTE_GATEWAY_KEY is empty - the remote gateway will likely reject requests")
		}
		if cfg.AuthRefreshToken == "" {
			warnings = append(warnings, "AUTH_REFRESH_TOKEN is empty - sync stays paused until a user signs in")
		}
	}

	if cfg.ReconcileLegacyCutoff == nil {
		warnings = append(warnings, "RECONCILE_LEGACY_CUTOFF is unset - staff/time-window sales fallback is enabled for every shift")
	}

	if cfg.ConnectivityProbeInterval == 0 {
		warnings = append(warnings, "CONNECTIVITY_PROBE_INTERVAL is 0 - online state only changes through the local API")
	}

	return warnings
}
