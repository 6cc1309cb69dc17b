package repository

import (
	"context"
	"sync"
	"time"

	"attendcam/internal/model"
	"attendcam/internal/recognition"

	"github.com/google/uuid"
)

// DefaultReattendanceInterval is how long a student stays marked after a recorded visit.
const DefaultReattendanceInterval = 2 * time.Minute

// Journal writes the recognized identities of one kiosk session to an
// AttendanceRepository. A student seen again within the reattendance interval of
// their last recorded visit is already marked and produces no new row.
type Journal struct {
	repo      AttendanceRepository
	sessionID string
	interval  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	marked map[string]time.Time
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithReattendanceInterval sets the window in which repeated matches count once.
// Zero records every match.
func WithReattendanceInterval(d time.Duration) JournalOption {
	return func(j *Journal) {
		if d >= 0 {
			j.interval = d
		}
	}
}

// NewJournal starts a new session with a random session ID.
func NewJournal(repo AttendanceRepository, opts ...JournalOption) *Journal {
	j := &Journal{
		repo:      repo,
		sessionID: uuid.NewString(),
		interval:  DefaultReattendanceInterval,
		now:       time.Now,
		marked:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// SessionID identifies the records written by this journal.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Record stores one match unless the student is already marked.
func (j *Journal) Record(ctx context.Context, identity recognition.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := identity.ID
	if key == "" {
		key = identity.Name
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if last, ok := j.marked[key]; ok && now.Sub(last) < j.interval {
		return nil
	}

	_, err := j.repo.Insert(&model.Attendance{
		SessionID:  j.sessionID,
		StudentID:  identity.ID,
		Name:       identity.Name,
		Program:    identity.Program,
		Branch:     identity.Branch,
		Mobile:     identity.Mobile,
		Email:      identity.Email,
		Total:      identity.Total,
		LastSeen:   identity.Last,
		Message:    identity.Message,
		RecordedAt: now,
	})
	if err != nil {
		return err
	}
	j.marked[key] = now
	return nil
}
