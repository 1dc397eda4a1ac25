package domain

import "time"

// SyncConflict holds an update whose target changed remotely after the local snapshot
type SyncConflict struct {
	ID            string           `json:"id"`
	Operation     PendingOperation `json:"operation"`
	ServerVersion Record           `json:"server_version"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Resolution is the human decision applied to a conflict
type Resolution string

const (
	ResolutionServer Resolution = "server"
	ResolutionLocal  Resolution = "local"
	ResolutionMerge  Resolution = "merge"
)

// IsValid reports whether the resolution is one of the known strategies
func (r Resolution) IsValid() bool {
	return r == ResolutionServer || r == ResolutionLocal || r == ResolutionMerge
}
