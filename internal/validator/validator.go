package validator

import (
	"fmt"
	"regexp"
	"strings"

	"vbridge/internal/lang"
	"vbridge/internal/rewrite"
)

// Issue is one diagnostic anchored to a source line. Line 0 means the
// issue applies to the input as a whole.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Lexical signatures of each source language. Finding one in rewritten
// output means a line slipped through unconverted; that is a warning, not
// an error, because passthrough is the engine's documented fallback.
var leftoverTokens = map[lang.Language]*regexp.Regexp{
	lang.VB6:    regexp.MustCompile(`(?i)\b(End\s+(?:Sub|Function|Class|If)|ElseIf|Dim\s+\w+\s+As)\b`),
	lang.VBNet:  regexp.MustCompile(`(?i)\b(End\s+(?:Sub|Function|Class|If)|ElseIf|Dim\s+\w+\s+As)\b`),
	lang.CSharp: regexp.MustCompile(`\b(public|private)\s+(class|void)\b|\bforeach\s*\(`),
}

// CheckResult inspects rewritten output plus the leftover block stack from
// the rewrite. It never mutates the output; errors and warnings are
// returned for the caller to attach to the result.
func CheckResult(input, output string, leftover []rewrite.Frame, source lang.Language) (errors, warnings []Issue) {
	for _, f := range leftover {
		errors = append(errors, Issue{
			Line:    f.OpenedAt,
			Message: fmt.Sprintf("unclosed %s block started at line %d", f.Kind, f.OpenedAt),
		})
	}

	if sig, ok := leftoverTokens[source]; ok {
		for i, line := range strings.Split(output, "\n") {
			if sig.MatchString(line) {
				warnings = append(warnings, Issue{
					Line:    i + 1,
					Message: fmt.Sprintf("unconverted %s token remains: %q", source, strings.TrimSpace(line)),
				})
			}
		}
	}

	if strings.TrimSpace(output) == "" && strings.TrimSpace(input) != "" {
		errors = append(errors, Issue{Line: 0, Message: "no output produced"})
	}

	return errors, warnings
}

// CheckSource is the live well-formedness check on unmodified source: only
// the block-balance bookkeeping runs, one issue per unmatched opener or
// closer, each anchored at its own line.
func CheckSource(code string, language lang.Language) []Issue {
	issues := []Issue{}
	leftover, unmatched := rewrite.Scan(code, language)
	for _, f := range leftover {
		issues = append(issues, Issue{
			Line:    f.OpenedAt,
			Message: fmt.Sprintf("unclosed %s block started at line %d", f.Kind, f.OpenedAt),
		})
	}
	for _, line := range unmatched {
		issues = append(issues, Issue{
			Line:    line,
			Message: fmt.Sprintf("unmatched closer at line %d", line),
		})
	}
	return issues
}
