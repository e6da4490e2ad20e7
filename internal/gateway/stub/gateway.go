// Package stub provides a scripted in-memory gateway for tests.
package stub

import (
	"context"
	"sync"

	"blockrover/internal/domain"
	"blockrover/internal/gateway"
)

// Gateway implements the tracker's gateway contract with scripted
// responses. Status polls consume StatusScript in order, sticking on the
// last entry once exhausted. A nil error entry in a script slot means the
// scripted value is returned as-is.
type Gateway struct {
	mu sync.Mutex

	// Snapshot script
	SnapshotData *domain.TokenSnapshot
	SnapshotErr  error

	// Audit scripts
	TriggerErr   error
	StatusScript []StatusStep
	Result       *domain.AuditResult
	ResultStatus domain.Status
	ResultErr    error

	// Call accounting
	TriggerCalls int
	StatusCalls  int
	ResultCalls  int

	statusIdx int
}

// StatusStep is one scripted response of the status endpoint.
type StatusStep struct {
	Status domain.AuditStatus
	Err    error
}

// New creates an empty stub gateway. By default the result probe reports
// an audit that has not ended yet.
func New() *Gateway {
	return &Gateway{ResultStatus: domain.StatusQueued}
}

// Snapshot returns the scripted token snapshot.
func (g *Gateway) Snapshot(_ context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SnapshotErr != nil {
		return nil, g.SnapshotErr
	}
	if g.SnapshotData == nil {
		return nil, gateway.ErrNotFound
	}
	snap := *g.SnapshotData
	snap.Address = addr
	return &snap, nil
}

// TriggerAudit records the call and returns the scripted error.
func (g *Gateway) TriggerAudit(_ context.Context, _ domain.ContractAddress) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.TriggerCalls++
	return g.TriggerErr
}

// AuditStatus returns the next scripted status observation.
func (g *Gateway) AuditStatus(_ context.Context, _ domain.ContractAddress) (domain.AuditStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.StatusCalls++
	if len(g.StatusScript) == 0 {
		return domain.AuditStatus{Status: domain.StatusUnknown}, nil
	}
	step := g.StatusScript[g.statusIdx]
	if g.statusIdx < len(g.StatusScript)-1 {
		g.statusIdx++
	}
	return step.Status, step.Err
}

// AuditResult returns the scripted result and envelope status.
func (g *Gateway) AuditResult(_ context.Context, _ domain.ContractAddress) (*domain.AuditResult, domain.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ResultCalls++
	if g.ResultErr != nil {
		return nil, domain.StatusUnknown, g.ResultErr
	}
	return g.Result, g.ResultStatus, nil
}
