package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/testnet-portfolio-panel/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	setupHandler := func(t *testing.T) (*SystemHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		ss := testutil.NewTestSystemService(t, db, testutil.TestDBPath(t))
		return NewSystemHandler(ss), db
	}

	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		response := testutil.DecodeJSON[HealthResponse](t, w)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "connected", response.Database)
		assert.Empty(t, response.Error)
		if assert.NotNil(t, response.Disk) {
			assert.NotEmpty(t, response.Disk.Path)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, db := setupHandler(t)

		// Close the database connection to simulate failure
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
		response := testutil.DecodeJSON[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", response.Status)
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns version information successfully", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestSystemService(t, db, testutil.TestDBPath(t)))

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		response := testutil.DecodeJSON[VersionInfoResponse](t, w)
		assert.NotEmpty(t, response.AppVersion)
		assert.Equal(t, "2", response.DbVersion)
		assert.NotNil(t, response.Features)
		assert.False(t, response.MigrationNeeded)
	})

	t.Run("returns 500 when database is closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestSystemService(t, db, testutil.TestDBPath(t)))
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
