package report

import (
	"strings"

	"blockrover/internal/domain"
)

// Footer closes every completed report.
const Footer = "_Generated by the BlockRover audit AI_"

// Checklist section titles.
const (
	ContractTitle = "🔒 *Contract security*"
	TradingTitle  = "💱 *Trading security*"
)

// Compose assembles the full report: market section, then the two
// security checklists when flag data is present, then (once the audit
// completed) the issue list and footer. Sections are joined by a blank
// line and are append-only: audit data arriving later never reorders
// what was already rendered.
func Compose(snap *domain.TokenSnapshot, result *domain.AuditResult, refBaseURL string) string {
	sections := []string{MarketSection(snap)}

	if len(snap.SecurityFlags) > 0 {
		sections = append(sections, SecurityChecklist(ContractTitle, snap.SecurityFlags, ContractRules))
	}
	if len(snap.TradingFlags) > 0 {
		sections = append(sections, SecurityChecklist(TradingTitle, snap.TradingFlags, TradingRules))
	}

	if result != nil {
		sections = append(sections, IssueList(result.Issues, refBaseURL), Footer)
	}

	return strings.Join(sections, "\n\n")
}
