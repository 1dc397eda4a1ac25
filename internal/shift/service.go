package shift

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/osse101/TillSync_Go/internal/concurrency"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/mutation"
	"github.com/osse101/TillSync_Go/internal/reconciliation"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// Reconciler computes the close figures of a shift
type Reconciler interface {
	Reconcile(ctx context.Context, in reconciliation.Input) (domain.ReconciliationResult, error)
}

// Connectivity reports whether the remote should be tried directly
type Connectivity interface {
	IsOnline() bool
}

// Service defines the shift lifecycle operations
type Service interface {
	StartShift(ctx context.Context, staffID string, openingCash domain.Amount) (*domain.ShiftMutationResult, error)
	PauseShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error)
	ResumeShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error)
	EndShift(ctx context.Context, input domain.EndShiftInput) (*domain.EndShiftResult, error)
	ActiveShift(ctx context.Context, staffID string) (*domain.StaffShift, error)
}

type service struct {
	remote     repository.Remote
	writer     mutation.Writer
	state      repository.StateStore
	reconciler Reconciler
	conn       Connectivity
	publisher  event.Bus
	locks      *concurrency.LockManager
	validate   *validator.Validate
	now        func() time.Time
}

// NewService creates a shift lifecycle service. remote serves open-shift
// lookups; every write goes through writer. publisher receives variance alerts.
func NewService(
	remote repository.Remote,
	writer mutation.Writer,
	state repository.StateStore,
	reconciler Reconciler,
	conn Connectivity,
	publisher event.Bus,
	locks *concurrency.LockManager,
) Service {
	return &service{
		remote:     remote,
		writer:     writer,
		state:      state,
		reconciler: reconciler,
		conn:       conn,
		publisher:  publisher,
		locks:      locks,
		validate:   validator.New(),
		now:        time.Now,
	}
}

func snapshotKey(staffID string) string {
	return stateKeyActiveShiftPrefix + staffID
}

// StartShift opens a shift for the staff member
func (s *service) StartShift(ctx context.Context, staffID string, openingCash domain.Amount) (*domain.ShiftMutationResult, error) {
	log := logger.FromContext(ctx)
	if staffID == "" {
		return nil, fmt.Errorf("%w: staff id is required", domain.ErrInvalidInput)
	}
	if openingCash < 0 {
		return nil, domain.ErrInvalidOpeningCash
	}

	defer s.locks.Lock(staffID)()

	open, err := s.openShift(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrShiftAlreadyOpen, open.ID)
	}

	now := s.now()
	shift := domain.StaffShift{
		ID:          uuid.NewString(),
		StaffID:     staffID,
		ShiftType:   domain.ShiftTypeAt(now),
		Status:      domain.ShiftActive,
		StartTime:   now.UTC(),
		OpeningCash: openingCash,
	}
	record, err := domain.RecordOf(shift)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEncodeShift, err)
	}

	saved, queued, err := s.write(ctx, domain.NewCreateOperation(domain.ResourceShifts, record))
	if err != nil {
		return nil, err
	}
	shift = mergeRemote(shift, saved)
	s.saveSnapshot(ctx, shift)
	metrics.ShiftTransitions.WithLabelValues(KindStart, strconv.FormatBool(queued)).Inc()

	log.Info(LogMsgShiftStarted, "shift_id", shift.ID, "staff_id", staffID, "shift_type", shift.ShiftType, "queued", queued)
	return &domain.ShiftMutationResult{Shift: shift, Queued: queued}, nil
}

// PauseShift moves an active shift to paused
func (s *service) PauseShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
	now := s.now().UTC()
	return s.transition(ctx, staffID, KindPause, domain.StaffShift.CanPause, func(shift *domain.StaffShift) domain.Record {
		shift.Status = domain.ShiftPaused
		shift.PausedAt = &now
		return domain.Record{
			domain.FieldShiftStatus:   string(domain.ShiftPaused),
			domain.FieldShiftPausedAt: now,
		}
	})
}

// ResumeShift moves a paused shift back to active
func (s *service) ResumeShift(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
	return s.transition(ctx, staffID, KindResume, domain.StaffShift.CanResume, func(shift *domain.StaffShift) domain.Record {
		shift.Status = domain.ShiftActive
		shift.PausedAt = nil
		return domain.Record{
			domain.FieldShiftStatus:   string(domain.ShiftActive),
			domain.FieldShiftPausedAt: nil,
		}
	})
}

func (s *service) transition(
	ctx context.Context,
	staffID, kind string,
	allowed func(domain.StaffShift) bool,
	apply func(*domain.StaffShift) domain.Record,
) (*domain.ShiftMutationResult, error) {
	defer s.locks.Lock(staffID)()

	current, err := s.requireOpen(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if !allowed(*current) {
		return nil, fmt.Errorf("%w: cannot %s a %s shift", domain.ErrInvalidTransition, kind, current.Status)
	}

	snapshot, err := domain.RecordOf(current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEncodeShift, err)
	}
	next := *current
	patch := apply(&next)

	saved, queued, err := s.write(ctx, domain.NewUpdateOperation(domain.ResourceShifts, current.ID, patch, snapshot))
	if err != nil {
		return nil, err
	}
	next = mergeRemote(next, saved)
	s.saveSnapshot(ctx, next)
	metrics.ShiftTransitions.WithLabelValues(kind, strconv.FormatBool(queued)).Inc()

	msg := LogMsgShiftPaused
	if kind == KindResume {
		msg = LogMsgShiftResumed
	}
	logger.FromContext(ctx).Info(msg, "shift_id", next.ID, "staff_id", staffID, "queued", queued)
	return &domain.ShiftMutationResult{Shift: next, Queued: queued}, nil
}

// EndShift closes an active or paused shift. Online, it reconciles against the
// confirmed remote sales and a failed reconciliation leaves the shift open;
// offline the close is queued with a zero expected total.
func (s *service) EndShift(ctx context.Context, input domain.EndShiftInput) (*domain.EndShiftResult, error) {
	log := logger.FromContext(ctx)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	defer s.locks.Lock(input.StaffID)()

	current, err := s.requireOpen(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if !current.CanEnd() {
		return nil, fmt.Errorf("%w: %s", domain.ErrShiftClosed, current.ID)
	}

	snapshot, err := domain.RecordOf(current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEncodeShift, err)
	}

	now := s.now().UTC()
	closed := *current
	closed.Status = domain.ShiftClosed
	closed.EndTime = &now
	closed.PausedAt = nil
	closed.Notes = input.Notes
	closed.VarianceReason = input.VarianceReason
	actual := input.ActualCashCounted
	closed.ActualCashCounted = &actual

	var recon *domain.ReconciliationResult
	if s.conn.IsOnline() {
		start := current.StartTime
		result, err := s.reconciler.Reconcile(ctx, reconciliation.Input{
			ShiftID:           current.ID,
			StaffID:           current.StaffID,
			StartTime:         &start,
			ActualCashCounted: actual,
		})
		if err != nil {
			log.Warn(LogMsgReconcileFailed, "shift_id", current.ID, "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrReconcileFailed, err)
		}
		recon = &result
	}

	patch := domain.Record{
		domain.FieldShiftStatus:            string(domain.ShiftClosed),
		domain.FieldShiftEndTime:           now,
		domain.FieldShiftPausedAt:          nil,
		domain.FieldShiftActualCashCounted: actual,
		domain.FieldShiftNotes:             input.Notes,
		domain.FieldShiftVarianceReason:    input.VarianceReason,
	}
	if recon != nil {
		closed.ExpectedSalesTotal = &recon.ExpectedSalesTotal
		closed.ExpectedCashTotal = &recon.ExpectedCashTotal
		closed.ExpectedPosTotal = &recon.ExpectedPosTotal
		closed.ExpectedTransferTotal = &recon.ExpectedTransferTotal
		closed.CashVariance = &recon.Variance
		patch[domain.FieldShiftExpectedSalesTotal] = recon.ExpectedSalesTotal
		patch[domain.FieldShiftExpectedCashTotal] = recon.ExpectedCashTotal
		patch[domain.FieldShiftExpectedPosTotal] = recon.ExpectedPosTotal
		patch[domain.FieldShiftExpectedTransferTotal] = recon.ExpectedTransferTotal
		patch[domain.FieldShiftCashVariance] = recon.Variance
	} else {
		var zero domain.Amount
		closed.ExpectedSalesTotal = &zero
		patch[domain.FieldShiftExpectedSalesTotal] = zero
	}

	saved, queued, err := s.write(ctx, domain.NewUpdateOperation(domain.ResourceShifts, current.ID, patch, snapshot))
	if err != nil {
		return nil, err
	}
	closed = mergeRemote(closed, saved)

	if err := s.state.DeleteState(ctx, snapshotKey(input.StaffID)); err != nil {
		log.Warn(LogMsgSnapshotWriteFailed, "staff_id", input.StaffID, "error", err)
	}
	metrics.ShiftTransitions.WithLabelValues(KindEnd, strconv.FormatBool(queued)).Inc()

	if recon != nil && recon.Alert != nil {
		log.Warn(LogMsgVarianceAlert,
			"shift_id", closed.ID,
			"staff_id", closed.StaffID,
			"variance", recon.Alert.Variance,
			"severity", recon.Alert.Severity)
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event.NewVarianceAlertEvent(*recon.Alert)); err != nil {
				log.Warn(LogMsgVarianceAlert, "error", err)
			}
		}
	}

	log.Info(LogMsgShiftEnded, "shift_id", closed.ID, "staff_id", closed.StaffID, "queued", queued, "reconciled", recon != nil)
	return &domain.EndShiftResult{Shift: closed, Queued: queued, Reconciliation: recon}, nil
}

// ActiveShift returns the staff member's open shift
func (s *service) ActiveShift(ctx context.Context, staffID string) (*domain.StaffShift, error) {
	defer s.locks.Lock(staffID)()
	return s.requireOpen(ctx, staffID)
}

func (s *service) requireOpen(ctx context.Context, staffID string) (*domain.StaffShift, error) {
	open, err := s.openShift(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoActiveShift, staffID)
	}
	return open, nil
}

// openShift returns the open shift from the local snapshot, or from the remote
// when online and nothing is held locally. A remote hit is cached locally.
func (s *service) openShift(ctx context.Context, staffID string) (*domain.StaffShift, error) {
	local, err := s.loadSnapshot(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if local != nil && local.IsOpen() {
		return local, nil
	}
	if !s.conn.IsOnline() {
		return nil, nil
	}

	filter := repository.Filter{Limit: 1, OrderBy: domain.FieldShiftStartTime, Descending: true}.
		Where(domain.FieldShiftStaffID, repository.OpEq, staffID).
		Where(domain.FieldShiftStatus, repository.OpIn, []string{string(domain.ShiftActive), string(domain.ShiftPaused)})
	records, err := s.remote.List(ctx, domain.ResourceShifts, filter)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgRemoteLookupFailed, "staff_id", staffID, "error", err)
		return nil, nil
	}
	if len(records) == 0 {
		return nil, nil
	}

	remote, err := domain.ShiftFromRecord(records[0])
	if err != nil || !remote.IsOpen() {
		return nil, nil
	}
	s.saveSnapshot(ctx, remote)
	return &remote, nil
}

// write hands op to the writer. It returns the remote's copy of the row when
// the change was confirmed directly.
func (s *service) write(ctx context.Context, op domain.PendingOperation) (domain.Record, bool, error) {
	res, err := s.writer.Write(ctx, op)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgWriteShift, err)
	}
	return res.Record, res.Queued, nil
}

// mergeRemote prefers the remote row when it decodes as the same shift
func mergeRemote(local domain.StaffShift, saved domain.Record) domain.StaffShift {
	if len(saved) == 0 {
		return local
	}
	remote, err := domain.ShiftFromRecord(saved)
	if err != nil || remote.ID != local.ID {
		return local
	}
	return remote
}

func (s *service) loadSnapshot(ctx context.Context, staffID string) (*domain.StaffShift, error) {
	raw, ok, err := s.state.GetState(ctx, snapshotKey(staffID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadSnapshot, err)
	}
	if !ok {
		return nil, nil
	}
	var shift domain.StaffShift
	if err := json.Unmarshal([]byte(raw), &shift); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadSnapshot, err)
	}
	return &shift, nil
}

func (s *service) saveSnapshot(ctx context.Context, shift domain.StaffShift) {
	log := logger.FromContext(ctx)
	raw, err := json.Marshal(shift)
	if err == nil {
		err = s.state.SetState(ctx, snapshotKey(shift.StaffID), string(raw))
	}
	if err != nil {
		log.Warn(LogMsgSnapshotWriteFailed, "staff_id", shift.StaffID, "error", err)
	}
}
