package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api/request"
	"github.com/ndewijer/testnet-portfolio-panel/internal/api/response"
	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

// HistoryHandler handles portfolio history HTTP requests
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// HistoryResponse represents the portfolio history chart response.
// On failure only Success and Error are meaningful.
type HistoryResponse struct {
	Success             bool                 `json:"success"`
	Range               string               `json:"range,omitempty"`
	Start               int64                `json:"start"`
	End                 int64                `json:"end"`
	Data                []model.HistoryPoint `json:"data"`
	Stats               model.HistoryStats   `json:"stats"`
	InsufficientHistory bool                 `json:"insufficient_history"`
	Message             string               `json:"message,omitempty"`
	Error               string               `json:"error,omitempty"`
}

// History handles GET requests for the charted portfolio value over a range.
//
// Endpoint: GET /api/portfolio/history
// Query Parameters:
//   - range: 1d, 1w, 1m, 6m, 1y, ytd or all (optional, defaults to 1w)
//   - backfill: prepend the carried value at the range start (optional, defaults to false)
//
// Response: 200 OK with HistoryResponse. An empty range is still a success.
// Error: 400 Bad Request if range or backfill is invalid
// Error: 500 Internal Server Error if the history store cannot be read
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	query, err := request.ParseHistoryQuery(
		r.URL.Query().Get("range"),
		r.URL.Query().Get("backfill"),
	)
	if err != nil {
		response.RespondJSON(w, http.StatusBadRequest, HistoryResponse{
			Data:  []model.HistoryPoint{},
			Error: err.Error(),
		})
		return
	}

	result, err := h.historyService.GetHistory(r.Context(), query.Range.String(), query.Backfill)
	if err != nil {
		status := http.StatusInternalServerError
		message := apperrors.ErrFailedToGetPortfolioHistory.Error()
		if errors.Is(err, apperrors.ErrInvalidRangeToken) {
			status = http.StatusBadRequest
			message = err.Error()
		}
		response.RespondJSON(w, status, HistoryResponse{
			Data:  []model.HistoryPoint{},
			Error: message,
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HistoryResponse{
		Success:             true,
		Range:               result.Range.String(),
		Start:               result.Start,
		End:                 result.End,
		Data:                result.Series,
		Stats:               result.Stats,
		InsufficientHistory: result.InsufficientHistory,
		Message:             result.Message,
	})
}

// MetadataResponse wraps the history store summary.
type MetadataResponse struct {
	Success bool                   `json:"success"`
	Data    *model.HistoryMetadata `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Metadata handles GET requests for the history store summary.
//
// Endpoint: GET /api/portfolio/metadata
// Response: 200 OK with MetadataResponse. An empty store reports zero snapshots.
// Error: 500 Internal Server Error if the history store cannot be read
func (h *HistoryHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	metadata, err := h.historyService.Metadata(r.Context())
	if err != nil {
		response.RespondJSON(w, http.StatusInternalServerError, MetadataResponse{
			Error: apperrors.ErrFailedToGetHistoryMetadata.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, MetadataResponse{Success: true, Data: &metadata})
}
