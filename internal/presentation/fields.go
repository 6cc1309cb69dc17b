package presentation

// FieldID is the stable identifier of one display field.
type FieldID string

const (
	FieldStudentID FieldID = "id"
	FieldName      FieldID = "name"
	FieldProgram   FieldID = "program"
	FieldBranch    FieldID = "branch"
	FieldMobile    FieldID = "mobile"
	FieldEmail     FieldID = "gmail"
	FieldTotal     FieldID = "total"
	FieldLast      FieldID = "last"
	FieldStatus    FieldID = "output"
	FieldWelcome   FieldID = "welcome"
	FieldAttended  FieldID = "attendance-time"
	FieldSnapshot  FieldID = "face-snapshot"
)

// IdentityFields are overwritten only by a successful match.
var IdentityFields = []FieldID{
	FieldStudentID, FieldName, FieldProgram, FieldBranch, FieldMobile, FieldEmail, FieldTotal, FieldLast,
}

// AllFields lists every field in display order.
var AllFields = append(append([]FieldID{}, IdentityFields...), FieldStatus, FieldWelcome, FieldAttended, FieldSnapshot)

// Sink receives the rendered value of one field.
type Sink interface {
	Set(value string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(value string)

func (f SinkFunc) Set(value string) { f(value) }

// Fields maps display fields to their sinks. Fields without a sink are still tracked
// by State, they are just not rendered anywhere.
type Fields map[FieldID]Sink

// Tee returns a Sink that forwards every value to all of sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(value string) {
		for _, s := range sinks {
			s.Set(value)
		}
	})
}
