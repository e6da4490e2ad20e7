package tracker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"blockrover/internal/cache"
	"blockrover/internal/domain"
	"blockrover/internal/gateway"
	"blockrover/internal/report"
	"blockrover/internal/storage"
)

// NotFoundMessage is the terminal text when the token is unknown to the
// data provider.
const NotFoundMessage = "❌ Token not found. Check the contract address and try again."

// Session is the unit of work for one audit invocation. It owns the
// contract address, the snapshot, the notification channel and the
// polling loop; nothing is shared with other sessions.
type Session struct {
	id   string
	addr domain.ContractAddress
	gw   Gateway

	refBase  string
	interval time.Duration
	maxFails int

	snapshots cache.SnapshotCache
	archive   storage.SessionStore
	recorder  StatusRecorder
	logger    *log.Logger

	out chan Notification
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Address    domain.ContractAddress
	Gateway    Gateway
	RefBaseURL string

	PollInterval    time.Duration
	MaxPollFailures int

	// Snapshots caches token snapshots across sessions. Optional.
	Snapshots cache.SnapshotCache
	// Archive stores finished sessions. Optional, best effort.
	Archive storage.SessionStore
	// Recorder mirrors status transitions to analytics. Optional.
	Recorder StatusRecorder
	Logger   *log.Logger
}

// NewSession creates a session for one contract address.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		id:        uuid.NewString(),
		addr:      opts.Address,
		gw:        opts.Gateway,
		refBase:   opts.RefBaseURL,
		interval:  opts.PollInterval,
		maxFails:  opts.MaxPollFailures,
		snapshots: opts.Snapshots,
		archive:   opts.Archive,
		recorder:  opts.Recorder,
		logger:    logger,
		out:       make(chan Notification, 8),
	}
}

// ID returns the session UUID used for archiving and analytics.
func (s *Session) ID() string { return s.id }

// Events returns the notification stream. It is closed when the session
// reaches a terminal state or is cancelled; consumers should range over it.
func (s *Session) Events() <-chan Notification { return s.out }

// Run executes the full session: snapshot fetch, initial report, audit
// trigger, polling to terminal, archiving. It blocks until terminal or
// cancellation and always closes the notification channel on return.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.out)
	startedAt := time.Now().UnixMilli()

	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// NotFound and transport failures during the initial fetch are
		// both fatal for the session: one error notification, the audit
		// is never triggered.
		text := ErrorText("")
		if errors.Is(err, gateway.ErrNotFound) {
			text = NotFoundMessage
		}
		s.emit(ctx, Notification{Kind: KindFinal, Text: text})
		return err
	}

	if !s.emit(ctx, Notification{Kind: KindReport, Text: report.Compose(snap, nil, s.refBase)}) {
		return ctx.Err()
	}

	// The audit may have completed in an earlier session. Probe the
	// result once before triggering a fresh job.
	if result, status, err := s.gw.AuditResult(ctx, s.addr); err == nil && status == domain.StatusEnded && result != nil {
		text := report.Compose(snap, result, s.refBase)
		if !s.emit(ctx, Notification{Kind: KindFinal, Text: text}) {
			return ctx.Err()
		}
		s.store(ctx, &Outcome{Status: domain.StatusEnded, Result: result, FinalText: text}, startedAt)
		return nil
	}

	tr := NewTracker(TrackerOptions{
		Gateway:         s.gw,
		Snapshot:        snap,
		RefBaseURL:      s.refBase,
		PollInterval:    s.interval,
		MaxPollFailures: s.maxFails,
		SessionID:       s.id,
		Recorder:        s.recorder,
		Logger:          s.logger,
	})
	outcome, err := tr.Run(ctx, s.out)
	if err != nil {
		return err
	}

	s.store(ctx, outcome, startedAt)
	return nil
}

// fetchSnapshot returns the token snapshot, going through the cache when
// one is configured. Cache failures fall through to the gateway.
func (s *Session) fetchSnapshot(ctx context.Context) (*domain.TokenSnapshot, error) {
	if s.snapshots != nil {
		if snap, err := s.snapshots.Get(ctx, s.addr); err == nil && snap != nil {
			return snap, nil
		} else if err != nil {
			s.logger.Printf("snapshot cache get %s: %v", s.addr, err)
		}
	}

	snap, err := s.gw.Snapshot(ctx, s.addr)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, snap); err != nil {
			s.logger.Printf("snapshot cache set %s: %v", s.addr, err)
		}
	}
	return snap, nil
}

// store archives the finished session, best effort.
func (s *Session) store(ctx context.Context, outcome *Outcome, startedAt int64) {
	if s.archive == nil || outcome == nil {
		return
	}
	rec := &domain.SessionRecord{
		SessionID:  s.id,
		Address:    s.addr,
		Status:     outcome.Status,
		Report:     outcome.FinalText,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UnixMilli(),
	}
	if outcome.Result != nil {
		rec.IssueCount = len(outcome.Result.Issues)
	}
	if err := s.archive.Insert(ctx, rec); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("archive session %s: %v", s.id, err)
	}
}

// emit delivers a notification unless the session was torn down.
func (s *Session) emit(ctx context.Context, n Notification) bool {
	select {
	case s.out <- n:
		return true
	case <-ctx.Done():
		return false
	}
}
