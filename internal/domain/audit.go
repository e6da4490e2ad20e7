package domain

import "strings"

// Status enumerates the audit job lifecycle as reported by the remote
// audit engine. Only transitions between values are significant; repeated
// observations of the same value carry no information.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusAnalyzing Status = "analyzing"
	StatusEnded     Status = "ended"
	StatusErrored   Status = "errored"
	StatusUnknown   Status = "unknown"
)

// Terminal reports whether no further status change can follow.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusErrored
}

// ParseStatus maps the remote service's status strings onto the local
// enum. Unrecognized values map to StatusUnknown rather than an error so
// a misbehaving remote cannot wedge the poll loop.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "pending", "waiting":
		return StatusQueued
	case "analyzing", "in-progress", "running", "generating":
		return StatusAnalyzing
	case "ended", "success", "done":
		return StatusEnded
	case "errored", "error", "failed":
		return StatusErrored
	default:
		return StatusUnknown
	}
}

// AuditStatus is one observation of the remote audit job.
type AuditStatus struct {
	Status Status
	// Phase is an optional human-readable sub-phase supplied by the
	// audit engine ("scanning bytecode", "running detectors", ...).
	Phase string
	// Message carries the remote error message when Status is errored.
	Message string
}

// Issue is a single finding in a completed audit.
type Issue struct {
	ID          string
	Explanation string
	// RecommendationRef is the path fragment appended to the reference
	// base URL to link the remediation advice for this issue.
	RecommendationRef string
}

// AuditResult is the completed audit payload. Fetched exactly once per
// session, only after the status reaches ended. Issue order is the order
// the audit engine reported and is preserved through rendering.
type AuditResult struct {
	Issues []Issue
}
