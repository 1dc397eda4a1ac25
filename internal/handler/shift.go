package handler

import (
	"context"
	"net/http"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/shift"
)

// StartShiftRequest opens a shift with the counted float
type StartShiftRequest struct {
	StaffID     string        `json:"staff_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	OpeningCash domain.Amount `json:"opening_cash" validate:"min=0"`
}

// StaffRequest identifies the staff member for pause/resume
type StaffRequest struct {
	StaffID string `json:"staff_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
}

// HandleStartShift opens a shift for the staff member
// @Summary Start shift
// @Description Open a shift for a staff member. 202 when the change was queued offline.
// @Tags shifts
// @Accept json
// @Produce json
// @Param request body StartShiftRequest true "Staff and opening cash"
// @Success 200 {object} domain.ShiftMutationResult
// @Success 202 {object} domain.ShiftMutationResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/shifts/start [post]
func HandleStartShift(svc shift.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartShiftRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Start shift"); err != nil {
			return
		}

		res, err := svc.StartShift(r.Context(), req.StaffID, req.OpeningCash)
		if err != nil {
			respondServiceError(w, r, "start shift", err)
			return
		}
		respondJSON(w, mutationStatus(res.Queued), res)
	}
}

// HandlePauseShift pauses the staff member's active shift
// @Summary Pause shift
// @Tags shifts
// @Accept json
// @Produce json
// @Param request body StaffRequest true "Staff member"
// @Success 200 {object} domain.ShiftMutationResult
// @Success 202 {object} domain.ShiftMutationResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/shifts/pause [post]
func HandlePauseShift(svc shift.Service) http.HandlerFunc {
	return handleStaffTransition("pause shift", func(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
		return svc.PauseShift(ctx, staffID)
	})
}

// HandleResumeShift resumes the staff member's paused shift
// @Summary Resume shift
// @Tags shifts
// @Accept json
// @Produce json
// @Param request body StaffRequest true "Staff member"
// @Success 200 {object} domain.ShiftMutationResult
// @Success 202 {object} domain.ShiftMutationResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/shifts/resume [post]
func HandleResumeShift(svc shift.Service) http.HandlerFunc {
	return handleStaffTransition("resume shift", func(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error) {
		return svc.ResumeShift(ctx, staffID)
	})
}

func handleStaffTransition(
	opName string,
	action func(ctx context.Context, staffID string) (*domain.ShiftMutationResult, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StaffRequest
		if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
			return
		}

		res, err := action(r.Context(), req.StaffID)
		if err != nil {
			respondServiceError(w, r, opName, err)
			return
		}
		respondJSON(w, mutationStatus(res.Queued), res)
	}
}

// HandleEndShift closes the shift and reports the reconciliation
// @Summary End shift
// @Description Close the shift with the counted drawer and return the cash reconciliation
// @Tags shifts
// @Accept json
// @Produce json
// @Param request body domain.EndShiftInput true "Close-out figures"
// @Success 200 {object} domain.EndShiftResult
// @Success 202 {object} domain.EndShiftResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/shifts/end [post]
func HandleEndShift(svc shift.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.EndShiftInput
		if err := DecodeAndValidateRequest(r, w, &req, "End shift"); err != nil {
			return
		}

		res, err := svc.EndShift(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, "end shift", err)
			return
		}
		respondJSON(w, mutationStatus(res.Queued), res)
	}
}

// HandleActiveShift returns the staff member's open shift
// @Summary Get active shift
// @Tags shifts
// @Produce json
// @Param staff_id query string true "Staff member"
// @Success 200 {object} domain.StaffShift
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/shifts/active [get]
func HandleActiveShift(svc shift.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, ok := GetQueryParam(r, w, "staff_id")
		if !ok {
			return
		}

		s, err := svc.ActiveShift(r.Context(), staffID)
		if err != nil {
			respondServiceError(w, r, "active shift", err)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

// mutationStatus is 202 when the change is held locally for sync, 200 once confirmed
func mutationStatus(queued bool) int {
	if queued {
		return http.StatusAccepted
	}
	return http.StatusOK
}
