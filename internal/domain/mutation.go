package domain

// MutationRequest is a change to a remote record made from the till screen
type MutationRequest struct {
	Type     OperationType `json:"type" validate:"required,oneof=create update delete"`
	Resource string        `json:"resource" validate:"required,max=64"`
	RecordID string        `json:"record_id,omitempty" validate:"required_unless=Type create,max=128"`
	Data     Record        `json:"data,omitempty" validate:"required_unless=Type delete"`
	// Snapshot is the record as the screen last saw it; updates carrying one
	// are conflict-checked when they sync later
	Snapshot Record `json:"snapshot,omitempty"`
}

// Operation converts the request into the pending operation it stands for
func (r MutationRequest) Operation() PendingOperation {
	switch r.Type {
	case OperationCreate:
		return NewCreateOperation(r.Resource, r.Data)
	case OperationUpdate:
		return NewUpdateOperation(r.Resource, r.RecordID, r.Data, r.Snapshot)
	case OperationDelete:
		return NewDeleteOperation(r.Resource, r.RecordID)
	}
	op := NewDeleteOperation(r.Resource, r.RecordID)
	op.Type = r.Type
	return op
}

// MutationResult reports where a change landed. Queued changes are confirmed
// later by the sync engine; Record is only set for confirmed writes.
type MutationResult struct {
	QueueEntryID string `json:"queue_entry_id"`
	RecordID     string `json:"record_id"`
	Queued       bool   `json:"queued"`
	Record       Record `json:"record,omitempty"`
}
