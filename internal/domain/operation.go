package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OperationType is the kind of mutation a pending operation performs
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// PendingOperation is a locally durable, not-yet-confirmed mutation against a remote resource.
//
// QueueEntryID identifies the entry inside the queue and keys the failure ledger.
// TargetRecordID identifies the remote record the operation writes and keys conflicts.
type PendingOperation struct {
	QueueEntryID   string        `json:"queue_entry_id" validate:"required"`
	TargetRecordID string        `json:"target_record_id" validate:"required"`
	Type           OperationType `json:"type" validate:"required,oneof=create update delete"`
	Resource       string        `json:"resource" validate:"required,max=64"`
	Data           Record        `json:"data,omitempty" validate:"required_unless=Type delete"`
	Timestamp      time.Time     `json:"timestamp" validate:"required"`
	Snapshot       Record        `json:"snapshot,omitempty"`
}

// NeedsConflictCheck reports whether the drain must compare the operation's
// snapshot against the remote record before applying it. Sales are an
// append-only log and never conflict.
func (op PendingOperation) NeedsConflictCheck() bool {
	return op.Type == OperationUpdate && op.Resource != ResourceSales
}

// SnapshotTime returns the pre-image modification time, if one was captured
func (op PendingOperation) SnapshotTime() (time.Time, bool) {
	if op.Snapshot == nil {
		return time.Time{}, false
	}
	return op.Snapshot.UpdatedAt()
}

// RebaseSnapshot moves the snapshot modification time forward to t, the time
// the remote stamped on a confirmed write made by this terminal. Operations
// without a snapshot time, or with one at or after t, are returned unchanged.
func (op PendingOperation) RebaseSnapshot(t time.Time) (PendingOperation, bool) {
	at, ok := op.SnapshotTime()
	if !ok || !at.Before(t) {
		return op, false
	}
	snap := op.Snapshot.Clone()
	snap[FieldUpdatedAt] = t.UTC().Format(time.RFC3339Nano)
	op.Snapshot = snap
	return op, true
}

// NewCreateOperation builds a create for a new record. The record id is taken
// from data when present, otherwise a new one is generated and written into data.
func NewCreateOperation(resource string, data Record) PendingOperation {
	data = data.Clone()
	if data == nil {
		data = Record{}
	}
	recordID := data.ID()
	if recordID == "" {
		recordID = uuid.NewString()
		data[FieldID] = recordID
	}
	return PendingOperation{
		QueueEntryID:   uuid.NewString(),
		TargetRecordID: recordID,
		Type:           OperationCreate,
		Resource:       resource,
		Data:           data,
		Timestamp:      time.Now().UTC(),
	}
}

// NewUpdateOperation builds a patch of an existing record. snapshot may be nil.
func NewUpdateOperation(resource, recordID string, patch, snapshot Record) PendingOperation {
	return PendingOperation{
		QueueEntryID:   uuid.NewString(),
		TargetRecordID: recordID,
		Type:           OperationUpdate,
		Resource:       resource,
		Data:           patch.Clone(),
		Timestamp:      time.Now().UTC(),
		Snapshot:       snapshot.Clone(),
	}
}

// NewDeleteOperation builds a delete of an existing record
func NewDeleteOperation(resource, recordID string) PendingOperation {
	return PendingOperation{
		QueueEntryID:   uuid.NewString(),
		TargetRecordID: recordID,
		Type:           OperationDelete,
		Resource:       resource,
		Timestamp:      time.Now().UTC(),
	}
}

// SyncSummary reports the outcome of a drain cycle
type SyncSummary struct {
	Ran         bool     `json:"ran"`
	SkipReason  string   `json:"skip_reason,omitempty"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Conflicts   int      `json:"conflicts"`
	Quarantined int      `json:"quarantined"`
	AuthPaused  bool     `json:"auth_paused"`
	Remaining   int      `json:"remaining"`
	Duration    Duration `json:"duration"`
}

// Reasons a drain cycle did not run
const (
	SkipReasonOffline    = "offline"
	SkipReasonInProgress = "in_progress"
	SkipReasonAuthPaused = "auth_paused"
	SkipReasonEmpty      = "empty"
)

// SyncStatus is a point-in-time view of the sync engine
type SyncStatus struct {
	Online      bool           `json:"online"`
	LastOnline  *time.Time     `json:"last_online,omitempty"`
	Syncing     bool           `json:"syncing"`
	AuthPaused  bool           `json:"auth_paused"`
	NeedsLogin  bool           `json:"needs_login"`
	Pending     int            `json:"pending"`
	Conflicts   int            `json:"conflicts"`
	Failures    map[string]int `json:"failures,omitempty"`
	LastSync    *time.Time     `json:"last_sync,omitempty"`
	LastSummary *SyncSummary   `json:"last_summary,omitempty"`
}

// Duration marshals as a Go duration string
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
