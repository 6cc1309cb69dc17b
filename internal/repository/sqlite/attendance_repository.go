package sqlite

import (
	"fmt"

	"attendcam/internal/model"
)

// AttendanceRepository implements repository.AttendanceRepository for SQLite.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert adds a new attendance record to the database.
func (r *AttendanceRepository) Insert(a *model.Attendance) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO attendance (session_id, student_id, name, program, branch, mobile, email, total, last_seen, message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.SessionID, a.StudentID, a.Name, a.Program, a.Branch, a.Mobile, a.Email, a.Total, a.LastSeen, a.Message, a.RecordedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attendance: %w", err)
	}

	return result.LastInsertId()
}

// Recent returns the newest records first. A non-positive limit returns everything.
func (r *AttendanceRepository) Recent(limit int) ([]model.Attendance, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Conn().Query(`
		SELECT id, session_id, student_id, name, program, branch, mobile, email, total, last_seen, message, recorded_at
		FROM attendance ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.SessionID, &a.StudentID, &a.Name, &a.Program, &a.Branch,
			&a.Mobile, &a.Email, &a.Total, &a.LastSeen, &a.Message, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}

	return records, rows.Err()
}

// CountByStudent returns how many times a student has been recorded.
func (r *AttendanceRepository) CountByStudent(studentID string) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM attendance WHERE student_id = ?`, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

// DeleteAll removes every attendance record.
func (r *AttendanceRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM attendance`); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}
