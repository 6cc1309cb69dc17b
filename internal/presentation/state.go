// Package presentation renders recognition outcomes into the kiosk display fields.
//
// State is not safe for concurrent use. The capture loop owns it and applies every
// completed request from a single goroutine, in completion order.
package presentation

import (
	"fmt"

	"attendcam/internal/recognition"
)

const (
	MsgMatched       = "Matched"
	MsgUnknownFace   = "Unknown face"
	MsgSendError     = "Error sending image"
	MsgCameraFailure = "Failed to access camera"
)

// State holds the currently displayed value of every field.
type State struct {
	fields Fields
	values map[FieldID]string
}

// New creates a State rendering into fields.
func New(fields Fields) *State {
	if fields == nil {
		fields = Fields{}
	}
	return &State{
		fields: fields,
		values: make(map[FieldID]string, len(AllFields)),
	}
}

// Apply renders the outcome of one request. A non-nil err is a transport failure and
// only touches the status line, as does an Unmatched result.
func (s *State) Apply(result recognition.Result, err error) {
	if err != nil {
		s.set(FieldStatus, MsgSendError)
		return
	}

	switch r := result.(type) {
	case recognition.Matched:
		s.applyMatched(r.Identity)
	case recognition.Unmatched:
		s.set(FieldStatus, orDefault(r.Message, MsgUnknownFace))
	default:
		s.set(FieldStatus, MsgSendError)
	}
}

func (s *State) applyMatched(id recognition.Identity) {
	s.set(FieldStatus, orDefault(id.Message, MsgMatched))

	s.set(FieldStudentID, id.ID)
	s.set(FieldName, id.Name)
	s.set(FieldProgram, id.Program)
	s.set(FieldBranch, id.Branch)
	s.set(FieldMobile, id.Mobile)
	s.set(FieldEmail, id.Email)
	s.set(FieldTotal, id.Total)
	s.set(FieldLast, id.Last)
	s.set(FieldWelcome, fmt.Sprintf("✅ Welcome, %s", id.Name))
	s.set(FieldAttended, fmt.Sprintf("✅ Attendance marked at %s", id.Last))

	// keep the previous snapshot when the service sent none
	if url := id.SnapshotURL(); url != "" {
		s.set(FieldSnapshot, url)
	}
}

// Fail shows msg on the status line and leaves everything else alone.
func (s *State) Fail(msg string) {
	s.set(FieldStatus, msg)
}

// Value returns the current value of one field.
func (s *State) Value(id FieldID) string {
	return s.values[id]
}

// Snapshot returns a copy of all current field values.
func (s *State) Snapshot() map[FieldID]string {
	out := make(map[FieldID]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *State) set(id FieldID, value string) {
	s.values[id] = value
	if sink, ok := s.fields[id]; ok && sink != nil {
		sink.Set(value)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
