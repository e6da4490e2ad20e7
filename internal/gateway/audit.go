package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"blockrover/internal/domain"
)

// TriggerAudit asks the audit engine to start a job for the contract.
// Fire-and-forget: the ack carries no state, and a failure to start is
// detected later through status polling. The caller must not invoke this
// more than once per session.
func (c *Client) TriggerAudit(ctx context.Context, addr domain.ContractAddress) error {
	if err := c.postJSON(ctx, "/audit/"+addr.String(), nil); err != nil {
		return fmt.Errorf("trigger audit: %w", err)
	}
	return nil
}

// statusResponse is the raw payload of the status endpoint.
type statusResponse struct {
	Status  string `json:"status"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// AuditStatus fetches the current audit job status.
func (c *Client) AuditStatus(ctx context.Context, addr domain.ContractAddress) (domain.AuditStatus, error) {
	var raw statusResponse
	if err := c.getJSON(ctx, "/audit/"+addr.String()+"/status", &raw); err != nil {
		return domain.AuditStatus{}, fmt.Errorf("fetch audit status: %w", err)
	}

	return domain.AuditStatus{
		Status:  domain.ParseStatus(raw.Status),
		Phase:   raw.Phase,
		Message: raw.Message,
	}, nil
}

// resultEnvelope is the outer payload of the result endpoint. The data
// field is itself a JSON-encoded string and needs a second decode.
type resultEnvelope struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

// resultPayload is the inner (double-encoded) audit result.
type resultPayload struct {
	Issues []struct {
		ID             string `json:"id"`
		Explanation    string `json:"explanation"`
		Recommendation string `json:"recommendation"`
	} `json:"issues"`
}

// AuditResult fetches the completed audit. The first return value is the
// parsed result; the second is the envelope status so callers that probe
// before triggering can tell whether an audit already ended. A payload
// whose inner data cannot be decoded returns ErrMalformed.
func (c *Client) AuditResult(ctx context.Context, addr domain.ContractAddress) (*domain.AuditResult, domain.Status, error) {
	var env resultEnvelope
	if err := c.getJSON(ctx, "/audit/"+addr.String(), &env); err != nil {
		return nil, domain.StatusUnknown, fmt.Errorf("fetch audit result: %w", err)
	}

	status := domain.ParseStatus(env.Status)
	if status != domain.StatusEnded {
		return nil, status, nil
	}

	var payload resultPayload
	if err := json.Unmarshal([]byte(env.Data), &payload); err != nil {
		return nil, status, fmt.Errorf("%w: decode audit result data: %v", ErrMalformed, err)
	}

	result := &domain.AuditResult{Issues: make([]domain.Issue, 0, len(payload.Issues))}
	for _, iss := range payload.Issues {
		result.Issues = append(result.Issues, domain.Issue{
			ID:                iss.ID,
			Explanation:       iss.Explanation,
			RecommendationRef: iss.Recommendation,
		})
	}
	return result, status, nil
}
