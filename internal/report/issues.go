package report

import (
	"fmt"
	"strings"

	"blockrover/internal/domain"
)

// markdownEscaper escapes the characters that are significant in the chat
// renderer's Markdown dialect. Applied to free-text fields only; layout
// produced by this package is left intact.
var markdownEscaper = strings.NewReplacer(
	"#", `\#`,
	"/", `\/`,
	"(", `\(`,
	")", `\)`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
)

// EscapeText escapes Markdown-significant characters in free text.
func EscapeText(s string) string {
	return markdownEscaper.Replace(s)
}

// NoIssuesLine is rendered instead of an empty findings section.
const NoIssuesLine = "✅ No issues found."

// IssueList renders the audit findings block. Issues are numbered from 1
// in the order the audit engine reported them; explanations are escaped
// and each issue carries a recommendation link built from refBaseURL.
func IssueList(issues []domain.Issue, refBaseURL string) string {
	var b strings.Builder
	b.WriteString("🚨 *Audit findings*\n")

	if len(issues) == 0 {
		b.WriteString(NoIssuesLine)
		return b.String()
	}

	for i, iss := range issues {
		fmt.Fprintf(&b, "#%d %s\n", i+1, EscapeText(iss.Explanation))
		fmt.Fprintf(&b, "%s", recommendationURL(refBaseURL, iss))
		if i < len(issues)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// recommendationURL builds the remediation link for one issue. Falls back
// to the issue ID when the engine supplied no explicit reference.
func recommendationURL(base string, iss domain.Issue) string {
	ref := iss.RecommendationRef
	if ref == "" {
		ref = iss.ID
	}
	return strings.TrimRight(base, "/") + "/" + ref
}
