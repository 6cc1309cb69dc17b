package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"attendcam/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data", "attendance.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAttendanceRepository_InsertAndRecent(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	names := []string{"Asha", "Ravi", "Meera"}
	for i, name := range names {
		id, err := repo.Insert(&model.Attendance{
			SessionID:  "session-1",
			StudentID:  name + "-id",
			Name:       name,
			Program:    "BTech",
			LastSeen:   "09:1" + string(rune('0'+i)),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("Expected positive ID, got %d", id)
		}
	}

	records, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Name != "Meera" || records[1].Name != "Ravi" {
		t.Errorf("Expected newest first, got %s, %s", records[0].Name, records[1].Name)
	}
	if !records[0].RecordedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Unexpected recorded_at %v", records[0].RecordedAt)
	}
	if records[0].Program != "BTech" || records[0].SessionID != "session-1" {
		t.Errorf("Fields not round-tripped: %+v", records[0])
	}

	all, err := repo.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected all 3 records, got %d", len(all))
	}
}

func TestAttendanceRepository_CountByStudent(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))

	for i := 0; i < 3; i++ {
		repo.Insert(&model.Attendance{SessionID: "s", StudentID: "21", Name: "Asha", RecordedAt: time.Now()})
	}
	repo.Insert(&model.Attendance{SessionID: "s", StudentID: "22", Name: "Ravi", RecordedAt: time.Now()})

	count, err := repo.CountByStudent("21")
	if err != nil {
		t.Fatalf("CountByStudent failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3, got %d", count)
	}

	count, _ = repo.CountByStudent("missing")
	if count != 0 {
		t.Errorf("Expected 0 for unknown student, got %d", count)
	}
}

func TestAttendanceRepository_DeleteAll(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))
	repo.Insert(&model.Attendance{SessionID: "s", StudentID: "21", Name: "Asha", RecordedAt: time.Now()})

	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	records, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty journal, got %d records", len(records))
	}
}

func TestNew_MigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	second.Close()
}
