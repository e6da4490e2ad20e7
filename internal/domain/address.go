package domain

import (
	"fmt"
	"strings"
)

// ContractAddress identifies the token contract under analysis.
// It is validated at construction and used as the correlation key
// for all gateway calls within a session.
type ContractAddress string

// ParseAddress validates and normalizes a user-supplied contract address.
// Accepted form is "0x" followed by 40 hex digits; the result is lowercased
// so the same contract always maps to the same key.
func ParseAddress(raw string) (ContractAddress, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("invalid contract address %q: want 0x followed by 40 hex digits", raw)
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", fmt.Errorf("invalid contract address %q: non-hex character %q", raw, c)
		}
	}
	return ContractAddress(strings.ToLower(s)), nil
}

func (a ContractAddress) String() string { return string(a) }
