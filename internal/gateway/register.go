package gateway

import (
	"context"
	"fmt"

	"blockrover/internal/domain"
)

// Register enrolls a wallet address with the remote service. The service
// returns no body of interest; only transport success matters.
func (c *Client) Register(ctx context.Context, addr domain.ContractAddress) error {
	if err := c.postJSON(ctx, fmt.Sprintf("/register/%s", addr), nil); err != nil {
		return fmt.Errorf("register %s: %w", addr, err)
	}
	return nil
}
