package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/queue"
	"github.com/osse101/TillSync_Go/internal/repository"
	"github.com/osse101/TillSync_Go/internal/validation"
)

// Connectivity reports whether the remote should be tried directly
type Connectivity interface {
	IsOnline() bool
}

// Writer applies one pending operation, directly or through the queue
type Writer interface {
	Write(ctx context.Context, op domain.PendingOperation) (*domain.MutationResult, error)
}

// Service accepts screen changes to remote records
type Service interface {
	Writer
	Apply(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error)
}

type service struct {
	remote   repository.Remote
	queue    queue.Queue
	payloads validation.PayloadValidator
	conn     Connectivity
	validate *validator.Validate
}

// NewService creates the write-through service. payloads may be nil.
func NewService(remote repository.Remote, q queue.Queue, payloads validation.PayloadValidator, conn Connectivity) Service {
	return &service{
		remote:   remote,
		queue:    q,
		payloads: payloads,
		conn:     conn,
		validate: validator.New(),
	}
}

// Apply validates a screen change and writes it
func (s *service) Apply(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.Write(ctx, req.Operation())
}

// Write sends op to the remote when online and nothing is queued for the same
// record. Otherwise, or when the direct write fails, op is queued. Either way
// the change is accepted locally; only invalid operations and local storage
// failures are errors.
func (s *service) Write(ctx context.Context, op domain.PendingOperation) (*domain.MutationResult, error) {
	log := logger.FromContext(ctx)

	if err := s.validate.Struct(op); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}
	if s.payloads != nil {
		if err := s.payloads.ValidateOperation(op); err != nil {
			return nil, err
		}
	}

	result := &domain.MutationResult{QueueEntryID: op.QueueEntryID, RecordID: op.TargetRecordID}

	switch {
	case !s.conn.IsOnline():
	case s.queue.HasPending(op.Resource, op.TargetRecordID):
		// A direct write would overtake the queued ones
		log.Debug(LogMsgBehindQueued, "resource", op.Resource, "record_id", op.TargetRecordID)
	default:
		saved, err := Send(ctx, s.remote, op)
		if err == nil {
			result.Record = saved
			metrics.Mutations.WithLabelValues(op.Resource, metrics.OutcomeConfirmed).Inc()
			log.Info(LogMsgConfirmed, "resource", op.Resource, "type", op.Type, "record_id", op.TargetRecordID)
			return result, nil
		}
		log.Warn(LogMsgDirectWriteFailed,
			"resource", op.Resource, "type", op.Type, "record_id", op.TargetRecordID, "error", err)
	}

	if err := s.queue.Enqueue(ctx, op); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgQueueChange, err)
	}
	result.Queued = true
	metrics.Mutations.WithLabelValues(op.Resource, metrics.OutcomeQueued).Inc()
	log.Info(LogMsgQueued, "resource", op.Resource, "type", op.Type, "record_id", op.TargetRecordID, "queue_entry_id", op.QueueEntryID)
	return result, nil
}

// Send performs one write against the remote and returns its copy of the row,
// if it has one. Sales creates go through the transactional endpoint, and
// deleting a record that is already gone counts as done.
func Send(ctx context.Context, remote repository.Remote, op domain.PendingOperation) (domain.Record, error) {
	switch op.Type {
	case domain.OperationCreate:
		if op.Resource == domain.ResourceSales {
			return remote.CompleteSale(ctx, op.Data)
		}
		return remote.Insert(ctx, op.Resource, op.Data)
	case domain.OperationUpdate:
		return remote.Update(ctx, op.Resource, op.TargetRecordID, op.Data)
	case domain.OperationDelete:
		err := remote.Delete(ctx, op.Resource, op.TargetRecordID)
		if errors.Is(err, domain.ErrRecordNotFound) {
			err = nil
		}
		return nil, err
	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidOperation, op.Type)
	}
}
