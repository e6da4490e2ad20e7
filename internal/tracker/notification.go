// Package tracker drives the audit lifecycle for one contract address:
// snapshot fetch, audit trigger, status polling and exactly-once
// notification of every meaningful transition.
package tracker

import (
	"fmt"

	"blockrover/internal/domain"
)

// Kind tags a Notification variant.
type Kind int

const (
	// KindReport carries the initial statistics report, rendered before
	// the audit starts. The collaborator shows it as the main message.
	KindReport Kind = iota
	// KindProgress carries a non-terminal status update.
	KindProgress
	// KindFinal carries the terminal outcome: the full composed report,
	// or an error message. Exactly one per session, always last.
	KindFinal
)

// Notification is one outward message. Delivery (message edits, deletes,
// retries) belongs to the consumer; the core only guarantees ordering and
// the one-terminal invariant.
type Notification struct {
	Kind Kind
	Text string
}

// DefaultErrorMessage is used when the remote service reports a failure
// without a message of its own.
const DefaultErrorMessage = "Oops, something went wrong!"

// ErrorText renders a terminal error notification.
func ErrorText(msg string) string {
	if msg == "" || msg == DefaultErrorMessage {
		return "❌ " + DefaultErrorMessage
	}
	return fmt.Sprintf("❌ %s (%s)", DefaultErrorMessage, msg)
}

// ProgressText renders a non-terminal status update, including the
// engine's sub-phase when present.
func ProgressText(st domain.AuditStatus) string {
	if st.Phase != "" {
		return fmt.Sprintf("🔍 Audit in progress: %s — %s", st.Status, st.Phase)
	}
	return fmt.Sprintf("🔍 Audit in progress: %s", st.Status)
}
