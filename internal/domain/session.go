package domain

// SessionRecord is the archived outcome of one audit session.
// Corresponds to the audit_sessions table in PostgreSQL.
type SessionRecord struct {
	SessionID  string          // PRIMARY KEY, UUID
	Address    ContractAddress // audited contract
	Status     Status          // terminal status (ended | errored)
	IssueCount int             // number of findings, 0 when errored
	Report     string          // final composed report text
	StartedAt  int64           // session start (ms)
	FinishedAt int64           // terminal notification time (ms)
	CreatedAt  int64           // record creation timestamp (ms)
}

// StatusEvent is one observed status transition, mirrored to the
// analytics store. Corresponds to the status_events table in ClickHouse.
type StatusEvent struct {
	SessionID  string
	Address    ContractAddress
	Status     Status
	Phase      string
	ObservedAt int64 // ms
}
