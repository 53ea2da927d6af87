// Package workflow drives one print attempt as a cancellable,
// event-emitting state machine composed from the transport, readiness
// and retry layers.
package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rubdev/labelctl/internal/discovery"
	"github.com/rubdev/labelctl/internal/faults"
	"github.com/rubdev/labelctl/internal/observability"
	"github.com/rubdev/labelctl/internal/protocol"
	"github.com/rubdev/labelctl/internal/readiness"
	"github.com/rubdev/labelctl/internal/retry"
	"github.com/rubdev/labelctl/internal/transport"
)

// Options configures one workflow machine.
type Options struct {
	// Connection retry bounds across the whole attempt loop.
	MaxAttempts       int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	MaxRetryDelay     time.Duration

	Readiness   readiness.Options
	AutoCorrect bool

	// History, when set, records successful prints per address so the
	// selector learns from them. Optional.
	History discovery.History

	// Notify, when set, receives every event as it is appended. The
	// stream is ordered and append-only; consumers must not block.
	Notify func(Event)
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:       3,
		RetryDelay:        2 * time.Second,
		BackoffMultiplier: 1.5,
		MaxRetryDelay:     15 * time.Second,
		Readiness:         readiness.DefaultOptions(),
		AutoCorrect:       true,
	}
}

// Job is one print request.
type Job struct {
	ID      string
	Address string
	Data    []byte
	// Language overrides payload detection when set.
	Language protocol.Language
}

// Machine executes print jobs one at a time. State snapshots are
// replaced wholesale; the event log is append-only and returned by copy.
type Machine struct {
	tr   transport.Transport
	eval *readiness.Evaluator
	corr *readiness.Corrector
	log  zerolog.Logger
	opts Options

	mu      sync.Mutex
	running bool
	state   State
	events  []Event
	jobID   string
	started time.Time
}

func New(tr transport.Transport, log zerolog.Logger, opts Options) *Machine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	wlog := log.With().Str("component", "workflow").Logger()
	eval := readiness.NewEvaluator(tr, log)
	return &Machine{
		tr:   tr,
		eval: eval,
		corr: readiness.NewCorrector(tr, eval, log),
		log:  wlog,
		opts: opts,
	}
}

// State returns the current immutable snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Events returns a copy of the event log so far.
func (m *Machine) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Run executes job to a terminal state. Cancellation is cooperative:
// ctx is observed at step boundaries only, and an already-issued send is
// never rolled back.
func (m *Machine) Run(ctx context.Context, job Job) (State, error) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return m.state, faults.New(faults.CodeOperationFailed, "a print attempt is already running")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	m.running = true
	m.jobID = job.ID
	m.started = time.Now()
	m.events = nil
	m.state = State{Running: true, Attempt: 1, MaxAttempts: m.opts.MaxAttempts}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	final := m.run(ctx, job)
	observability.RecordPrint(outcomeOf(final), time.Since(m.started))
	if final.Fault != nil {
		return final, final.Fault
	}
	return final, nil
}

func outcomeOf(st State) string {
	switch {
	case st.Cancelled:
		return "cancelled"
	case st.Completed:
		return "completed"
	default:
		return "failed"
	}
}

func (m *Machine) run(ctx context.Context, job Job) State {
	m.enterStep(StepInitializing, "Preparing print job")
	if m.cancelled(ctx) {
		return m.cancel()
	}

	m.enterStep(StepValidating, "Validating payload")
	if len(job.Data) == 0 {
		return m.fail(faults.New(faults.CodeDataEmpty, "print payload is empty").
			WithHint(faults.HintFor(faults.CodeDataEmpty)))
	}
	lang := job.Language
	if lang == "" || lang == protocol.LanguageUnknown {
		lang = protocol.DetectLanguage(job.Data)
	}
	ropts := m.opts.Readiness
	ropts.PayloadLanguage = lang

	policy := retry.Policy{
		MaxAttempts: m.opts.MaxAttempts,
		BaseDelay:   m.opts.RetryDelay,
		Multiplier:  m.opts.BackoffMultiplier,
		MaxDelay:    m.opts.MaxRetryDelay,
	}

	var lastFault *faults.Fault
	for attempt := 1; attempt <= m.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			m.setAttempt(attempt)
			m.emit(Event{
				Kind:    EventRetryAttempt,
				Message: "Retrying print attempt",
			})
			if err := sleep(ctx, retry.DelayFor(policy, attempt)); err != nil {
				return m.cancel()
			}
		}
		if m.cancelled(ctx) {
			return m.cancel()
		}

		m.enterStep(StepConnecting, "Connecting to printer")
		if err := m.tr.Connect(ctx, job.Address); err != nil {
			f := faults.From(err)
			if f.Recovery == faults.Recoverable && attempt < m.opts.MaxAttempts {
				lastFault = f
				m.emitFault(f)
				continue
			}
			return m.fail(f)
		}
		m.enterStep(StepConnected, "Connected")
		if m.cancelled(ctx) {
			return m.cancelDisconnect()
		}

		m.enterStep(StepCheckingStatus, "Checking printer status")
		m.eval.ResetAll()
		snap := m.eval.ReadAllStatuses(ctx, ropts)
		if blocking := m.resolveReadiness(ctx, &snap, ropts); len(blocking) > 0 {
			f := faults.New(faults.CodePrintNotReady, "printer not ready: %s", strings.Join(blocking, "; ")).
				WithHint(faults.HintFor(faults.CodePrintNotReady))
			m.setIssues(blocking)
			if attempt < m.opts.MaxAttempts {
				lastFault = f
				m.emitFault(f)
				_ = m.tr.Disconnect()
				continue
			}
			return m.fail(f)
		}
		m.setIssues(nil)
		if m.cancelled(ctx) {
			return m.cancelDisconnect()
		}

		m.enterStep(StepSending, "Sending print data")
		sendStart := time.Now()
		if err := m.tr.SendRaw(ctx, job.Data); err != nil {
			// At-most-once send: never re-enter the retry loop here.
			f := faults.From(err).WithRecovery(faults.PossiblyRecover).
				WithHint(faults.HintFor(faults.CodePrintSendFailed))
			return m.fail(f)
		}
		if m.cancelled(ctx) {
			return m.cancelDisconnect()
		}

		m.enterStep(StepWaiting, "Waiting for print completion")
		dwell := EstimateDwell(len(job.Data), lang)
		if remaining := dwell - time.Since(sendStart); remaining > 0 {
			if err := sleep(ctx, remaining); err != nil {
				return m.cancelDisconnect()
			}
		}
		if m.cancelled(ctx) {
			return m.cancelDisconnect()
		}

		m.enterStep(StepCompleted, "Print completed")
		if m.opts.History != nil {
			m.opts.History.RecordSuccess(job.Address)
		}
		m.mu.Lock()
		st := m.state
		st.Running = false
		st.Completed = true
		m.state = st
		m.mu.Unlock()
		m.emit(Event{Kind: EventCompleted, Message: "Print completed"})
		return m.State()
	}

	if lastFault == nil {
		lastFault = faults.New(faults.CodeOperationExhausted, "print attempts exhausted")
	}
	return m.fail(lastFault)
}

// resolveReadiness applies auto-correction against a not-ready snapshot
// and re-reads, then folds a payload/printer language mismatch into the
// blocking issues. The returned list is empty when sending may proceed.
func (m *Machine) resolveReadiness(ctx context.Context, snap *readiness.Readiness, ropts readiness.Options) []string {
	blocking := snap.BlockingIssues(ropts)
	mismatch := languageMismatch(*snap, ropts)
	if (len(blocking) > 0 || mismatch) && m.opts.AutoCorrect {
		m.emit(Event{Kind: EventStatusUpdate, Message: "Applying automatic corrections"})
		corrected, _ := m.corr.Apply(ctx, *snap, ropts, func(line string) {
			m.emit(Event{Kind: EventStatusUpdate, Message: line})
		})
		m.log.Debug().Str("corrections", corrected.Summary()).Msg("auto-correct pass done")
		*snap = m.eval.ReadAllStatuses(ctx, ropts)
		blocking = snap.BlockingIssues(ropts)
		mismatch = languageMismatch(*snap, ropts)
	}
	if mismatch {
		blocking = append(blocking, "printer language does not match payload")
	}
	return blocking
}

func languageMismatch(snap readiness.Readiness, ropts readiness.Options) bool {
	want := ropts.PayloadLanguage
	if want == "" || want == protocol.LanguageUnknown {
		return false
	}
	if !ropts.CheckLanguage || !snap.Language.Known {
		return false
	}
	if snap.LanguageValue == protocol.LanguageUnknown {
		return false
	}
	return snap.LanguageValue != want
}

func (m *Machine) cancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}

func (m *Machine) cancelDisconnect() State {
	_ = m.tr.Disconnect()
	return m.cancel()
}

// cancel transitions to the terminal cancelled state, emitting exactly
// one cancelled event and nothing after it.
func (m *Machine) cancel() State {
	m.mu.Lock()
	st := m.state
	st.Step = StepCancelled
	st.Running = false
	st.Cancelled = true
	st.Fault = faults.New(faults.CodePrintCancelled, "print cancelled").
		WithHint("The print was cancelled. Already-sent data may still print.")
	m.state = st
	m.mu.Unlock()
	m.emit(Event{Kind: EventCancelled, Step: StepCancelled, Message: "Print cancelled"})
	return m.State()
}

func (m *Machine) fail(f *faults.Fault) State {
	_ = m.tr.Disconnect()
	m.emitFault(f)
	m.mu.Lock()
	st := m.state
	st.Step = StepFailed
	st.Running = false
	st.Fault = f
	m.state = st
	m.mu.Unlock()
	m.emit(Event{Kind: EventStepChanged, Step: StepFailed, Message: f.Message, Fault: f})
	return m.State()
}

func (m *Machine) enterStep(step Step, message string) {
	m.mu.Lock()
	st := m.state
	st.Step = step
	if p, ok := stepProgress[step]; ok {
		st.Progress = p
	}
	m.state = st
	m.mu.Unlock()
	m.emit(Event{Kind: EventStepChanged, Step: step, Message: message})
	m.emit(Event{Kind: EventProgress, Step: step, Message: message})
}

func (m *Machine) setAttempt(attempt int) {
	m.mu.Lock()
	st := m.state
	st.Attempt = attempt
	st.Progress = stepProgress[StepConnecting]
	m.state = st
	m.mu.Unlock()
}

func (m *Machine) setIssues(issues []string) {
	m.mu.Lock()
	st := m.state
	st.Issues = issues
	m.state = st
	m.mu.Unlock()
}

func (m *Machine) emitFault(f *faults.Fault) {
	m.emit(Event{Kind: EventError, Message: f.Message, Fault: f})
}

// emit stamps the event with job, attempt, progress and elapsed time,
// appends it, and forwards it to the notify sink.
func (m *Machine) emit(ev Event) {
	m.mu.Lock()
	ev.JobID = m.jobID
	if ev.Step == "" {
		ev.Step = m.state.Step
	}
	ev.Attempt = m.state.Attempt
	ev.MaxAttempts = m.state.MaxAttempts
	ev.Progress = m.state.Progress
	ev.Elapsed = time.Since(m.started)
	ev.At = time.Now()
	m.events = append(m.events, ev)
	notify := m.opts.Notify
	m.mu.Unlock()
	if notify != nil {
		notify(ev)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
