package tracker

import (
	"context"
	"log"
	"time"

	"blockrover/internal/domain"
	"blockrover/internal/report"
)

// Default configuration values.
const (
	DefaultPollInterval = 2 * time.Second
)

// Gateway is the remote-service contract the tracker depends on.
// *gateway.Client satisfies it; gateway/stub scripts it for tests.
type Gateway interface {
	Snapshot(ctx context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error)
	TriggerAudit(ctx context.Context, addr domain.ContractAddress) error
	AuditStatus(ctx context.Context, addr domain.ContractAddress) (domain.AuditStatus, error)
	AuditResult(ctx context.Context, addr domain.ContractAddress) (*domain.AuditResult, domain.Status, error)
}

// StatusRecorder mirrors observed transitions to an analytics sink.
// Recording is best effort and never affects the conversation.
type StatusRecorder interface {
	Insert(ctx context.Context, ev *domain.StatusEvent) error
}

// State is the tracker lifecycle position.
type State int

const (
	StateIdle State = iota
	StateStarted
	StatePolling
	StateEnded
	StateErrored
)

// Tracker is the audit polling state machine for one session. It owns no
// goroutines of its own: Run drives the whole loop on the caller's
// goroutine and stops on terminal state or context cancellation.
type Tracker struct {
	gw        Gateway
	snapshot  *domain.TokenSnapshot
	refBase   string
	interval  time.Duration
	maxFails  int
	sessionID string
	recorder  StatusRecorder
	logger    *log.Logger

	state State
}

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	Gateway  Gateway
	Snapshot *domain.TokenSnapshot
	// RefBaseURL is the base for recommendation links in the final report.
	RefBaseURL string
	// PollInterval is the fixed tick between status polls.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration
	// MaxPollFailures caps consecutive transport failures before the
	// session is abandoned with a terminal error. 0 retries forever.
	MaxPollFailures int
	// SessionID correlates recorded status events. Optional.
	SessionID string
	// Recorder receives observed transitions. Optional.
	Recorder StatusRecorder
	Logger   *log.Logger
}

// NewTracker creates a Tracker in StateIdle.
func NewTracker(opts TrackerOptions) *Tracker {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		gw:        opts.Gateway,
		snapshot:  opts.Snapshot,
		refBase:   opts.RefBaseURL,
		interval:  interval,
		maxFails:  opts.MaxPollFailures,
		sessionID: opts.SessionID,
		recorder:  opts.Recorder,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current lifecycle position.
func (t *Tracker) State() State { return t.state }

// Outcome is the terminal result of a tracker run.
type Outcome struct {
	Status domain.Status
	// Result is the parsed audit when Status is ended, nil otherwise.
	Result *domain.AuditResult
	// FinalText is the text of the terminal notification that was emitted.
	FinalText string
}

// Run triggers the audit once, then polls status until a terminal
// condition, emitting deduplicated notifications on out. It returns the
// terminal outcome, or the context error if cancelled — in which case
// nothing further was emitted.
func (t *Tracker) Run(ctx context.Context, out chan<- Notification) (*Outcome, error) {
	t.state = StateStarted
	if err := t.gw.TriggerAudit(ctx, t.snapshot.Address); err != nil {
		// Failure to start is not immediately fatal: if the job really
		// never started, polling surfaces it as an errored status.
		t.logger.Printf("trigger audit for %s: %v", t.snapshot.Address, err)
	}

	t.state = StatePolling
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var last *domain.AuditStatus
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		st, err := t.gw.AuditStatus(ctx, t.snapshot.Address)
		if err != nil {
			failures++
			if t.maxFails > 0 && failures >= t.maxFails {
				t.logger.Printf("abandoning %s after %d consecutive poll failures: %v",
					t.snapshot.Address, failures, err)
				return t.fail(ctx, out, "")
			}
			// Transient: swallowed until the next tick.
			continue
		}
		failures = 0

		switch st.Status {
		case domain.StatusErrored:
			t.record(ctx, st)
			return t.fail(ctx, out, st.Message)

		case domain.StatusUnknown:
			if last == nil {
				// Unknown before any successful observation means the
				// job never existed; after one it is provider noise.
				return t.fail(ctx, out, st.Message)
			}

		case domain.StatusEnded:
			t.record(ctx, st)
			return t.finish(ctx, out)

		default:
			if last != nil && last.Status == st.Status && last.Phase == st.Phase {
				continue
			}
			observed := st
			last = &observed
			t.record(ctx, st)
			if !t.emit(ctx, out, Notification{Kind: KindProgress, Text: ProgressText(st)}) {
				return nil, ctx.Err()
			}
		}
	}
}

// finish fetches the result exactly once and emits the final report.
// A malformed or unreachable result downgrades the session to Errored.
func (t *Tracker) finish(ctx context.Context, out chan<- Notification) (*Outcome, error) {
	result, _, err := t.gw.AuditResult(ctx, t.snapshot.Address)
	if err != nil || result == nil {
		if err != nil {
			t.logger.Printf("fetch audit result for %s: %v", t.snapshot.Address, err)
		}
		return t.fail(ctx, out, "")
	}

	text := report.Compose(t.snapshot, result, t.refBase)
	if !t.emit(ctx, out, Notification{Kind: KindFinal, Text: text}) {
		return nil, ctx.Err()
	}
	t.state = StateEnded
	return &Outcome{Status: domain.StatusEnded, Result: result, FinalText: text}, nil
}

// fail emits the single terminal error notification.
func (t *Tracker) fail(ctx context.Context, out chan<- Notification, msg string) (*Outcome, error) {
	text := ErrorText(msg)
	if !t.emit(ctx, out, Notification{Kind: KindFinal, Text: text}) {
		return nil, ctx.Err()
	}
	t.state = StateErrored
	return &Outcome{Status: domain.StatusErrored, FinalText: text}, nil
}

// emit delivers a notification unless the session was torn down.
func (t *Tracker) emit(ctx context.Context, out chan<- Notification, n Notification) bool {
	select {
	case out <- n:
		return true
	case <-ctx.Done():
		return false
	}
}

// record mirrors one observation to the analytics sink, best effort.
func (t *Tracker) record(ctx context.Context, st domain.AuditStatus) {
	if t.recorder == nil {
		return
	}
	ev := &domain.StatusEvent{
		SessionID:  t.sessionID,
		Address:    t.snapshot.Address,
		Status:     st.Status,
		Phase:      st.Phase,
		ObservedAt: time.Now().UnixMilli(),
	}
	if err := t.recorder.Insert(ctx, ev); err != nil {
		t.logger.Printf("record status event for %s: %v", t.snapshot.Address, err)
	}
}
