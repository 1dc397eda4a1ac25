package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/handler"
)

const timeLayout = "2006-01-02 15:04:05"

// NewHealthCommand checks that the agent answers, optionally waiting for it
func NewHealthCommand(opts *RootOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the agent is up and its local store is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			out := cmd.OutOrStdout()
			deadline := time.Now().Add(wait)

			for {
				start := time.Now()
				err := c.get(cmd.Context(), "/readyz", nil)
				if err == nil {
					PrintSuccess(out, "Agent ready (response time: %v)", time.Since(start).Round(time.Millisecond))
					return nil
				}
				if time.Now().After(deadline) {
					PrintError(out, "Health check failed: %v", err)
					return err
				}
				time.Sleep(time.Second)
			}
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "keep retrying for this long")
	return cmd
}

// NewStatusCommand prints the sync status bar
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, queue and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status domain.SyncStatus
			if err := opts.client().get(cmd.Context(), apiPrefix+"/sync/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == formatJSON {
				return printJSON(out, status)
			}

			PrintHeader(out, "Sync Status")
			if status.Online {
				PrintSuccess(out, "Online")
			} else {
				PrintWarning(out, "Offline (last online: %s)", formatTime(status.LastOnline))
			}
			PrintInfo(out, "Pending operations: %d", status.Pending)
			PrintInfo(out, "Conflicts: %d", status.Conflicts)
			PrintInfo(out, "Last sync: %s", formatTime(status.LastSync))
			if status.Syncing {
				PrintInfo(out, "Sync in progress")
			}
			if status.NeedsLogin {
				PrintError(out, "Sign-in required before sync can resume")
			} else if status.AuthPaused {
				PrintWarning(out, "Sync paused while the session refreshes")
			}
			for id, n := range status.Failures {
				PrintWarning(out, "%s failed %d time(s)", id, n)
			}
			return nil
		},
	}
}

// NewSyncCommand triggers a drain cycle
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued operations to the remote now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary domain.SyncSummary
			if err := opts.client().post(cmd.Context(), apiPrefix+"/sync", nil, &summary); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == formatJSON {
				return printJSON(out, summary)
			}

			if !summary.Ran {
				PrintWarning(out, "Sync skipped: %s", summary.SkipReason)
				return nil
			}
			PrintSuccess(out, "Synced %d, failed %d, conflicts %d, quarantined %d (%s)",
				summary.Succeeded, summary.Failed, summary.Conflicts, summary.Quarantined,
				time.Duration(summary.Duration).Round(time.Millisecond))
			if summary.Remaining > 0 {
				PrintInfo(out, "%d operation(s) still queued", summary.Remaining)
			}
			if summary.AuthPaused {
				PrintWarning(out, "Paused on an authorization failure")
			}
			return nil
		},
	}
}

// NewQueueCommand lists the pending operations
func NewQueueCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List operations waiting to sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handler.QueueResponse
			if err := opts.client().get(cmd.Context(), apiPrefix+"/sync/queue", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == formatJSON {
				return printJSON(out, resp)
			}

			PrintHeader(out, fmt.Sprintf("Queue (%d)", resp.Count))
			for _, op := range resp.Operations {
				fmt.Fprintf(out, "%s  %-6s %-16s %s  %s\n",
					op.QueueEntryID, op.Type, op.Resource, op.TargetRecordID, op.Timestamp.Local().Format(timeLayout))
			}
			return nil
		},
	}
}

// NewConflictsCommand lists the conflicts awaiting review
func NewConflictsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List updates held back by a remote change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handler.ConflictsResponse
			if err := opts.client().get(cmd.Context(), apiPrefix+"/sync/conflicts", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == formatJSON {
				return printJSON(out, resp)
			}

			PrintHeader(out, fmt.Sprintf("Conflicts (%d)", resp.Count))
			for _, c := range resp.Conflicts {
				fmt.Fprintf(out, "%s  %-16s detected %s\n", c.ID, c.Operation.Resource, c.Timestamp.Local().Format(timeLayout))
			}
			return nil
		},
	}
}

// NewResolveCommand applies a decision to one conflict
func NewResolveCommand(opts *RootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "resolve <conflict-id> <server|local|merge>",
		Short: "Resolve a conflict",
		Long: `Resolve a conflict by keeping the server version, re-applying the local
update, or writing merged data supplied with --data.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := handler.ResolveConflictRequest{Resolution: domain.Resolution(args[1])}
			if !req.Resolution.IsValid() {
				return fmt.Errorf("invalid resolution %q: must be server, local or merge", args[1])
			}
			if req.Resolution == domain.ResolutionMerge {
				if data == "" {
					return fmt.Errorf("merge requires --data")
				}
				if err := json.Unmarshal([]byte(data), &req.MergedData); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			path := apiPrefix + "/sync/conflicts/" + url.PathEscape(args[0]) + "/resolve"
			if err := opts.client().post(cmd.Context(), path, req, nil); err != nil {
				return err
			}
			PrintSuccess(cmd.OutOrStdout(), "Conflict %s resolved (%s)", args[0], req.Resolution)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "merged record as JSON (merge only)")
	return cmd
}

// NewMutateCommand creates, updates or deletes a remote record through the agent
func NewMutateCommand(opts *RootOptions) *cobra.Command {
	var (
		recordID string
		data     string
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "mutate <create|update|delete> <resource>",
		Short: "Write a change to a remote record",
		Long: `Write a change to a remote record. The agent sends it straight to the
remote when online and queues it for the next sync otherwise. Updates may carry
the record as last seen in --snapshot so a later sync can detect a conflict.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.MutationRequest{
				Type:     domain.OperationType(args[0]),
				Resource: args[1],
				RecordID: recordID,
			}
			switch req.Type {
			case domain.OperationCreate, domain.OperationUpdate, domain.OperationDelete:
			default:
				return fmt.Errorf("invalid type %q: must be create, update or delete", args[0])
			}
			if req.Type != domain.OperationCreate && recordID == "" {
				return fmt.Errorf("%s requires --id", req.Type)
			}
			if req.Type != domain.OperationDelete {
				if data == "" {
					return fmt.Errorf("%s requires --data", req.Type)
				}
				if err := json.Unmarshal([]byte(data), &req.Data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}
			if snapshot != "" {
				if err := json.Unmarshal([]byte(snapshot), &req.Snapshot); err != nil {
					return fmt.Errorf("invalid --snapshot: %w", err)
				}
			}

			var res domain.MutationResult
			if err := opts.client().post(cmd.Context(), apiPrefix+"/mutations", req, &res); err != nil {
				return err
			}
			return printMutation(cmd, opts, res)
		},
	}

	cmd.Flags().StringVar(&recordID, "id", "", "target record id (update and delete)")
	cmd.Flags().StringVar(&data, "data", "", "record or patch as JSON")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "record as last seen, as JSON (update only)")
	return cmd
}

// NewSaleCommand records a completed sale
func NewSaleCommand(opts *RootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a completed sale with its items and payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" {
				return fmt.Errorf("sale requires --data")
			}
			var req handler.RecordSaleRequest
			if err := json.Unmarshal([]byte(data), &req.Sale); err != nil {
				return fmt.Errorf("invalid --data: %w", err)
			}

			var res domain.MutationResult
			if err := opts.client().post(cmd.Context(), apiPrefix+"/sales", req, &res); err != nil {
				return err
			}
			return printMutation(cmd, opts, res)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "sale as JSON")
	return cmd
}

func printMutation(cmd *cobra.Command, opts *RootOptions, res domain.MutationResult) error {
	out := cmd.OutOrStdout()
	if opts.Format == formatJSON {
		return printJSON(out, res)
	}
	if res.Queued {
		PrintWarning(out, "Queued %s for the next sync (entry %s)", res.RecordID, res.QueueEntryID)
		return nil
	}
	PrintSuccess(out, "Saved %s", res.RecordID)
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(timeLayout)
}
