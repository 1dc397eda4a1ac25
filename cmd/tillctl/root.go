package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const (
	envAddr         = "TILLCTL_ADDR"
	envAPIKey       = "LOCAL_API_KEY"
	defaultAddr     = "http://127.0.0.1:8080"
	defaultTimeout  = 10 * time.Second
	formatText      = "text"
	formatJSON      = "json"
	headerAPIKey    = "X-API-Key"
	apiPrefix       = "/api/v1"
	contentTypeJSON = "application/json"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Addr    string
	APIKey  string
	Format  string
	Timeout time.Duration
}

func (o *RootOptions) client() *apiClient {
	return newAPIClient(o.Addr, o.APIKey, o.Timeout)
}

// NewRootCommand creates the tillctl root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tillctl",
		Short: "Operate the TillSync agent on this terminal",
		Long:  "Inspect the offline queue, trigger a sync, resolve conflicts and record changes through the agent's local API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != formatText && opts.Format != formatJSON {
				return fmt.Errorf("invalid format %q: must be %s or %s", opts.Format, formatText, formatJSON)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", envOr(envAddr, defaultAddr), "agent base URL")
	cmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", os.Getenv(envAPIKey), "local API key")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", defaultTimeout, "request timeout")

	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))
	cmd.AddCommand(NewConflictsCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewMutateCommand(opts))
	cmd.AddCommand(NewSaleCommand(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
