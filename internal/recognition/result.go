package recognition

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"attendcam/internal/frame"
)

// Result is the outcome of one recognition request: either Matched or Unmatched.
type Result interface {
	isResult()
}

// Identity is the attendance record of a recognized person.
type Identity struct {
	ID       string
	Name     string
	Program  string
	Branch   string
	Mobile   string
	Email    string
	Total    string // visit counter, empty when the service did not send one
	Last     string // last-seen timestamp as formatted by the service
	Message  string
	Snapshot string // raw base64 JPEG of the matched face, empty when absent
}

// SnapshotURL returns the snapshot as a displayable data URL, or "" when there is none.
func (i Identity) SnapshotURL() string {
	if i.Snapshot == "" {
		return ""
	}
	return frame.JPEGDataURL(i.Snapshot)
}

// Matched is returned when the service recognized a face.
type Matched struct {
	Identity
}

// Unmatched is a valid negative result.
type Unmatched struct {
	Message string
}

func (Matched) isResult()   {}
func (Unmatched) isResult() {}

// Parse validates a response body and classifies it. A non-empty name is the only
// thing that makes a result Matched.
func Parse(body []byte) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	r := fieldReader{fields: fields}
	message := r.text("message")
	name := r.text("name")

	identity := Identity{
		ID:       r.text("id"),
		Name:     name,
		Program:  r.text("program"),
		Branch:   r.text("branch"),
		Mobile:   r.text("mobile"),
		Email:    r.text("email"),
		Total:    r.count("total"),
		Last:     r.text("last"),
		Message:  message,
		Snapshot: r.text("face_image"),
	}
	if identity.Email == "" {
		identity.Email = r.text("gmail")
	}
	if r.err != nil {
		return nil, r.err
	}

	if identity.Snapshot != "" {
		if _, err := base64.StdEncoding.DecodeString(identity.Snapshot); err != nil {
			return nil, fmt.Errorf("face_image is not valid base64: %w", err)
		}
	}

	if name == "" {
		return Unmatched{Message: message}, nil
	}
	return Matched{Identity: identity}, nil
}

// fieldReader pulls optional scalar fields out of a decoded object and remembers the
// first type error.
type fieldReader struct {
	fields map[string]json.RawMessage
	err    error
}

// count reads a counter field. A numeric zero reads as "" so an unset counter renders
// blank. A string "0" is kept.
func (r *fieldReader) count(key string) string {
	v := r.text(key)
	if raw := bytes.TrimSpace(r.fields[key]); len(raw) > 0 && raw[0] != '"' {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
			return ""
		}
	}
	return v
}

// text returns the field as a string. Strings and numbers are accepted, null and
// missing fields read as "". Anything else is a validation error.
func (r *fieldReader) text(key string) string {
	raw, ok := r.fields[key]
	if !ok || r.err != nil {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			r.err = fmt.Errorf("field %q: %w", key, err)
			return ""
		}
		return s
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			r.err = fmt.Errorf("field %q must be a string or a number", key)
			return ""
		}
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
}
