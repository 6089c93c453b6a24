package execution

import "math"

// State is the phase of the controller's current job.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateFinished
	StateStartingError
	StateRunningError
)

// NoExitCode is the exit code reported before a job has finished.
const NoExitCode int64 = math.MinInt64

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateStartingError:
		return "starting error"
	case StateRunningError:
		return "running error"
	default:
		return "unknown"
	}
}

// Active reports whether a job is being submitted or polled.
func (s State) Active() bool {
	return s == StateStarting || s == StateRunning
}

// Failed reports whether the last attempt ended in an error state.
func (s State) Failed() bool {
	return s == StateStartingError || s == StateRunningError
}

// Snapshot is a copy of the controller's observable state.
type Snapshot struct {
	Version      uint64
	SessionID    string
	State        State
	JobID        string
	OutputURL    string
	Transcript   []string
	ExitCode     int64
	RawOutputURL string
	ErrorMessage string
	Err          error
	AlertVisible bool
}

// Offset is the next output offset to request.
func (s Snapshot) Offset() int {
	return len(s.Transcript)
}

// HasExitCode reports whether the job finished with a recorded exit code.
func (s Snapshot) HasExitCode() bool {
	return s.State == StateFinished && s.ExitCode != NoExitCode
}
