package route

import (
	"net/http"
	"os"
	"path/filepath"

	"attendcam/internal/config"
	"attendcam/internal/display"
	"attendcam/internal/handler"
	"attendcam/internal/logger"
	"attendcam/internal/middleware"
	"attendcam/internal/repository"
)

// Deps are the services the HTTP surface reads from.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Hub        *display.Hub
	Attendance repository.AttendanceRepository
	SessionID  string
}

// pageHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func pageHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers static files, the kiosk API, log endpoints and auth, and
// wraps the mux with the authentication middleware.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(d.Config.StaticDirectory))))

	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(d.Hub, d.Logger))
	mux.HandleFunc("/api/attendance", handler.GetAttendanceHandler(d.Attendance, d.SessionID, d.Logger))

	for level, file := range handler.LogLevels {
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(d.Config, file))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(d.Logger, file))
	}

	mux.HandleFunc("/auth/login", handler.LoginHandler(d.Config, d.Logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	mux.HandleFunc("/", pageHandler(d.Config.StaticDirectory))

	return middleware.AuthMiddleware(mux)
}
