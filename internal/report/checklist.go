package report

import (
	"fmt"
	"strconv"
	"strings"
)

// RuleKind selects how a raw flag value is parsed and judged.
type RuleKind int

const (
	// RuleBool flags carry "0"/"1" (or true/false) values.
	RuleBool RuleKind = iota
	// RulePercent flags carry a fraction ("0.05" for 5%).
	RulePercent
)

// Rule is one row of a checklist table: which flag to read, how to parse
// it, when it counts as positive, and how to label it. Rules are plain
// data so the tables stay independently testable.
type Rule struct {
	Flag    string
	Display string
	Kind    RuleKind
	// GoodWhen is the boolean value that renders ✅ for RuleBool rules.
	GoodWhen bool
	// MaxPct is the highest fraction that renders ✅ for RulePercent rules.
	MaxPct float64
}

// ContractRules is the fixed contract-security checklist, in render order.
var ContractRules = []Rule{
	{Flag: "is_open_source", Display: "Verified source code", Kind: RuleBool, GoodWhen: true},
	{Flag: "is_proxy", Display: "Proxy contract", Kind: RuleBool, GoodWhen: false},
	{Flag: "is_mintable", Display: "Mintable", Kind: RuleBool, GoodWhen: false},
	{Flag: "can_take_back_ownership", Display: "Ownership reclaimable", Kind: RuleBool, GoodWhen: false},
	{Flag: "owner_change_balance", Display: "Owner can edit balances", Kind: RuleBool, GoodWhen: false},
	{Flag: "hidden_owner", Display: "Hidden owner", Kind: RuleBool, GoodWhen: false},
	{Flag: "selfdestruct", Display: "Self-destruct", Kind: RuleBool, GoodWhen: false},
	{Flag: "external_call", Display: "External calls", Kind: RuleBool, GoodWhen: false},
}

// TradingRules is the fixed trading-security checklist, in render order.
var TradingRules = []Rule{
	{Flag: "is_honeypot", Display: "Honeypot", Kind: RuleBool, GoodWhen: false},
	{Flag: "buy_tax", Display: "Buy tax", Kind: RulePercent, MaxPct: 0.10},
	{Flag: "sell_tax", Display: "Sell tax", Kind: RulePercent, MaxPct: 0.10},
	{Flag: "cannot_buy", Display: "Buying disabled", Kind: RuleBool, GoodWhen: false},
	{Flag: "cannot_sell_all", Display: "Sell-all blocked", Kind: RuleBool, GoodWhen: false},
	{Flag: "transfer_pausable", Display: "Transfers pausable", Kind: RuleBool, GoodWhen: false},
	{Flag: "trading_cooldown", Display: "Trading cooldown", Kind: RuleBool, GoodWhen: false},
	{Flag: "is_blacklisted", Display: "Blacklist", Kind: RuleBool, GoodWhen: false},
	{Flag: "slippage_modifiable", Display: "Modifiable slippage", Kind: RuleBool, GoodWhen: false},
	{Flag: "is_anti_whale", Display: "Anti-whale limits", Kind: RuleBool, GoodWhen: false},
}

// SecurityChecklist renders one checklist block: a title line followed by
// one `Display: value ✅|❌` line per rule. Missing or unparseable flags
// render Unknown and never count as positive.
func SecurityChecklist(title string, flags map[string]string, rules []Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)

	for i, rule := range rules {
		value, positive := evalRule(rule, flags)
		mark := "❌"
		if positive {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s: %s %s", rule.Display, value, mark)
		if i < len(rules)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// evalRule parses one raw flag value and judges positivity.
func evalRule(rule Rule, flags map[string]string) (value string, positive bool) {
	raw, ok := flags[rule.Flag]
	if !ok || strings.TrimSpace(raw) == "" {
		return Unknown, false
	}

	switch rule.Kind {
	case RulePercent:
		frac, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Unknown, false
		}
		return formatSig(frac*100, 3) + "%", frac <= rule.MaxPct

	default:
		set, ok := parseBoolFlag(raw)
		if !ok {
			return Unknown, false
		}
		value = "No"
		if set {
			value = "Yes"
		}
		return value, set == rule.GoodWhen
	}
}

// parseBoolFlag accepts the provider's "0"/"1" convention plus the usual
// textual spellings.
func parseBoolFlag(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}
