package handler

import (
	"context"
	"net/http"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// MutationApplier is the handler's view of the write-through service
type MutationApplier interface {
	Apply(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error)
}

// RecordSaleRequest is a completed sale rung up on the till
type RecordSaleRequest struct {
	Sale domain.Record `json:"sale" validate:"required"`
}

// HandleApplyMutation writes a change to a remote record
// @Summary Apply change
// @Description Create, update or delete a remote record. 200 when the remote confirmed it, 202 when it was queued for sync.
// @Tags mutations
// @Accept json
// @Produce json
// @Param request body domain.MutationRequest true "Change to apply"
// @Success 200 {object} domain.MutationResult
// @Success 202 {object} domain.MutationResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/mutations [post]
func HandleApplyMutation(svc MutationApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.MutationRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Apply change"); err != nil {
			return
		}

		res, err := svc.Apply(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, "apply change", err)
			return
		}
		respondJSON(w, mutationStatus(res.Queued), res)
	}
}

// HandleRecordSale records a completed sale through the transactional sale route
// @Summary Record sale
// @Description Record a completed sale with its items and payments. 200 when confirmed, 202 when queued.
// @Tags mutations
// @Accept json
// @Produce json
// @Param request body RecordSaleRequest true "Sale"
// @Success 200 {object} domain.MutationResult
// @Success 202 {object} domain.MutationResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/sales [post]
func HandleRecordSale(svc MutationApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordSaleRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Record sale"); err != nil {
			return
		}

		res, err := svc.Apply(r.Context(), domain.MutationRequest{
			Type:     domain.OperationCreate,
			Resource: domain.ResourceSales,
			Data:     req.Sale,
		})
		if err != nil {
			respondServiceError(w, r, "record sale", err)
			return
		}
		respondJSON(w, mutationStatus(res.Queued), res)
	}
}
