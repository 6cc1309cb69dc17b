package route

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"attendcam/internal/config"
	"attendcam/internal/display"
	"attendcam/internal/logger"
	"attendcam/internal/repository/sqlite"

	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>kiosk</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "login.html"), []byte("<form></form>"), 0644))

	db, err := sqlite.New(filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	return SetupRoutes(Deps{
		Config:     &config.Config{StaticDirectory: static, LogDirectory: t.TempDir(), Password: "secret"},
		Logger:     log,
		Hub:        display.NewHub(log),
		Attendance: sqlite.NewAttendanceRepository(db),
		SessionID:  "session-1",
	})
}

func get(t *testing.T, h http.Handler, path string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		req.AddCookie(&http.Cookie{Name: "authenticated", Value: "true"})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes_Pages(t *testing.T) {
	h := newRouter(t)

	rec := get(t, h, "/", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "kiosk")

	rec = get(t, h, "/login", false)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusNotFound, get(t, h, "/settings", true).Code)
	require.Equal(t, http.StatusSeeOther, get(t, h, "/", false).Code)
}

func TestSetupRoutes_Attendance(t *testing.T) {
	h := newRouter(t)

	rec := get(t, h, "/api/attendance", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"session_id":"session-1","count":0,"records":[]}`, rec.Body.String())

	require.Equal(t, http.StatusUnauthorized, get(t, h, "/api/attendance", false).Code)
}

func TestSetupRoutes_Logs(t *testing.T) {
	h := newRouter(t)

	for _, level := range []string{"info", "warning", "error"} {
		require.Equal(t, http.StatusNotFound, get(t, h, "/logs/"+level, true).Code, level)
	}
}
