package handlers

import (
	"net/http"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api/response"
	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// DiskResponse describes free space on the data volume.
type DiskResponse struct {
	Path        string  `json:"path"`
	FreeBytes   uint64  `json:"free_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string        `json:"status"`
	Database string        `json:"database"`
	Disk     *DiskResponse `json:"disk,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity.
// Disk usage is informational; failing to read it does not make the system unhealthy.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	// Check database health
	if err := h.systemService.CheckHealth(); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	if usage, err := h.systemService.CheckDiskUsage(); err == nil {
		resp.Disk = &DiskResponse{
			Path:        usage.Path,
			FreeBytes:   usage.FreeBytes,
			UsedPercent: usage.UsedPercent,
		}
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// VersionInfoResponse represents the version check response containing application
// and database version information, feature availability, and migration status.
type VersionInfoResponse struct {
	AppVersion       string          `json:"app_version"`
	DbVersion        string          `json:"db_version"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migration_needed"`
	MigrationMessage *string         `json:"migration_message"`
}

// Version handles GET requests to retrieve version information and feature availability.
// Returns the application version, database version, available features, and any pending migrations.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfoResponse
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetVersionInfo.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, VersionInfoResponse{
		AppVersion:       version.AppVersion,
		DbVersion:        version.DbVersion,
		Features:         version.Features,
		MigrationNeeded:  version.MigrationNeeded,
		MigrationMessage: version.MigrationMessage,
	})
}
