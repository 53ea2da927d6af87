package workflow

import (
	"time"

	"github.com/rubdev/labelctl/internal/faults"
)

// Step is one stage of the print workflow.
type Step string

const (
	StepInitializing   Step = "initializing"
	StepValidating     Step = "validating"
	StepConnecting     Step = "connecting"
	StepConnected      Step = "connected"
	StepCheckingStatus Step = "checking_status"
	StepSending        Step = "sending"
	StepWaiting        Step = "waiting_for_completion"
	StepCompleted      Step = "completed"
	StepFailed         Step = "failed"
	StepCancelled      Step = "cancelled"
)

// Terminal reports whether the workflow can leave this step.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepFailed || s == StepCancelled
}

// stepProgress fixes the progress fraction reported on entering a step.
// Failed and cancelled retain the last fraction reached.
var stepProgress = map[Step]float64{
	StepInitializing:   0.0,
	StepValidating:     0.1,
	StepConnecting:     0.2,
	StepConnected:      0.3,
	StepCheckingStatus: 0.45,
	StepSending:        0.7,
	StepWaiting:        0.9,
	StepCompleted:      1.0,
}

// EventKind tags the payload union of a workflow event.
type EventKind string

const (
	EventStepChanged  EventKind = "step_changed"
	EventProgress     EventKind = "progress_update"
	EventError        EventKind = "error_occurred"
	EventRetryAttempt EventKind = "retry_attempt"
	EventStatusUpdate EventKind = "status_update"
	EventCompleted    EventKind = "completed"
	EventCancelled    EventKind = "cancelled"
)

// Event is one entry of the append-only workflow event stream.
type Event struct {
	Kind        EventKind
	JobID       string
	Step        Step
	Message     string
	Attempt     int
	MaxAttempts int
	Progress    float64
	Elapsed     time.Duration
	Fault       *faults.Fault
	At          time.Time
}

// State is an immutable workflow snapshot; the machine replaces it
// wholesale on every transition.
type State struct {
	Step        Step
	Running     bool
	Completed   bool
	Cancelled   bool
	Attempt     int
	MaxAttempts int
	Progress    float64
	Issues      []string
	Fault       *faults.Fault
}
