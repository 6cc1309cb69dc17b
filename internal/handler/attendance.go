package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"attendcam/internal/logger"
	"attendcam/internal/model"
	"attendcam/internal/repository"
)

const defaultAttendanceLimit = 50

// AttendanceResponse is the body of GET /api/attendance.
type AttendanceResponse struct {
	SessionID string             `json:"session_id"`
	Count     int                `json:"count"`
	Records   []model.Attendance `json:"records"`
}

// GetAttendanceHandler lists the newest journal rows. ?limit=N bounds the result,
// limit=0 returns everything.
func GetAttendanceHandler(repo repository.AttendanceRepository, sessionID string, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := defaultAttendanceLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		records, err := repo.Recent(limit)
		if err != nil {
			logger.Error("Failed to load attendance: %v", err)
			http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.Attendance{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AttendanceResponse{
			SessionID: sessionID,
			Count:     len(records),
			Records:   records,
		})
	}
}
