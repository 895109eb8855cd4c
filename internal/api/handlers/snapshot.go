package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api/request"
	"github.com/ndewijer/testnet-portfolio-panel/internal/api/response"
	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
	"github.com/ndewijer/testnet-portfolio-panel/internal/validation"
)

// SnapshotHandler handles user-initiated valuations and the latest snapshot lookup.
type SnapshotHandler struct {
	snapshotService  *service.SnapshotService
	valuationService *service.ValuationService
	log              zerolog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(
	snapshotService *service.SnapshotService,
	valuationService *service.ValuationService,
	log zerolog.Logger,
) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService:  snapshotService,
		valuationService: valuationService,
		log:              log,
	}
}

// SnapshotResponse wraps a single snapshot with the success flag.
type SnapshotResponse struct {
	Success bool                   `json:"success"`
	Data    *model.ValuationRecord `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Detail  string                 `json:"detail,omitempty"`
}

// CreateSnapshot handles POST requests to value the portfolio now.
//
// Endpoint: POST /api/portfolio/snapshot
// Request Body: optional SnapshotRequest. Without a body the balances and prices
// are fetched from the exchange.
// Response: 201 Created with SnapshotResponse
// Error: 400 Bad Request if the body is malformed or fails validation
// Error: 409 Conflict if the previous snapshot is within the minimum interval
// Error: 502 Bad Gateway if the exchange is unavailable
// Error: 500 Internal Server Error if the snapshot cannot be stored
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SnapshotRequest](r)
	if err != nil && !errors.Is(err, errEmptyBody) {
		response.RespondJSON(w, http.StatusBadRequest, SnapshotResponse{
			Error:  "invalid request body",
			Detail: err.Error(),
		})
		return
	}

	var record model.ValuationRecord
	if req.IsEmpty() {
		record, err = h.snapshotService.Capture(r.Context())
	} else {
		if verr := validation.ValidateSnapshotRequest(req); verr != nil {
			response.RespondJSON(w, http.StatusBadRequest, SnapshotResponse{
				Error:  "validation failed",
				Detail: verr.Error(),
			})
			return
		}
		record, err = h.snapshotService.CaptureFrom(r.Context(), req.Balances, req.Prices)
	}

	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrSnapshotTooRecent):
			status = http.StatusConflict
		case errors.Is(err, apperrors.ErrUpstreamUnavailable):
			status = http.StatusBadGateway
		}
		h.log.Warn().Err(err).Int("status", status).Msg("Snapshot request failed")
		response.RespondJSON(w, status, SnapshotResponse{
			Error:  apperrors.ErrFailedToRecordSnapshot.Error(),
			Detail: err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusCreated, SnapshotResponse{Success: true, Data: &record})
}

// Latest handles GET requests for the most recent snapshot.
//
// Endpoint: GET /api/portfolio/latest
// Response: 200 OK with SnapshotResponse
// Error: 404 Not Found if nothing has been recorded yet
// Error: 500 Internal Server Error if the history store cannot be read
func (h *SnapshotHandler) Latest(w http.ResponseWriter, r *http.Request) {
	record, err := h.valuationService.Latest(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondJSON(w, http.StatusNotFound, SnapshotResponse{
				Error: apperrors.ErrSnapshotNotFound.Error(),
			})
			return
		}
		response.RespondJSON(w, http.StatusInternalServerError, SnapshotResponse{
			Error:  "failed to get latest snapshot",
			Detail: err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, SnapshotResponse{Success: true, Data: &record})
}
