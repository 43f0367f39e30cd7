package bringup

// Status is the connection state of one sensor slot.
type Status uint8

const (
	StatusNotAttempted Status = iota
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return "Not attempted"
	}
}

// MarshalText lets statuses appear by name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reporter is the part of the setup screen the sequencer talks to.
type Reporter interface {
	RenderProgress(percent int)
	ReportSensorStatus(name string, status Status)
}
