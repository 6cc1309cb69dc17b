package model

import "time"

// Attendance is one recognized visit recorded by the kiosk.
type Attendance struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	StudentID  string    `json:"student_id"`
	Name       string    `json:"name"`
	Program    string    `json:"program"`
	Branch     string    `json:"branch"`
	Mobile     string    `json:"mobile"`
	Email      string    `json:"email"`
	Total      string    `json:"total"`
	LastSeen   string    `json:"last_seen"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}
