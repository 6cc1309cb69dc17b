package repository

import (
	"attendcam/internal/model"
)

// AttendanceRepository defines the interface for attendance journal operations.
type AttendanceRepository interface {
	// Create operations
	Insert(a *model.Attendance) (int64, error)

	// Read operations
	Recent(limit int) ([]model.Attendance, error)
	CountByStudent(studentID string) (int, error)

	// Delete operations
	DeleteAll() error
}
