package capture

// State of a capture session.
type State int32

const (
	Uninitialized State = iota
	AwaitingCamera
	Running
	CameraFailed // terminal for the session
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingCamera:
		return "awaiting-camera"
	case Running:
		return "running"
	case CameraFailed:
		return "camera-failed"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
