package rewrite

import (
	"regexp"
	"strings"

	"vbridge/internal/lang"
)

type blockPattern struct {
	pattern *regexp.Regexp
	kind    BlockKind
	label   string
}

// Openers and closers for the keyword-delimited dialects. Single-line If
// statements carry their own terminator and are excluded by requiring
// Then at end-of-line.
var vbOpeners = []blockPattern{
	{re(`(?i)^(?:Public\s+|Private\s+|Friend\s+)?(?:Class|Module)\s+\w+`), KindClass, "Class"},
	{re(`(?i)^(?:Public\s+|Private\s+|Friend\s+|Protected\s+)?(?:Shared\s+|Static\s+)?(?:Sub|Function)\s+\w+\s*\(`), KindMethod, "Method"},
	{re(`(?i)^If\s+.+\s+Then\s*$`), KindConditional, "If"},
	{re(`(?i)^For\s+.+$`), KindLoop, "For"},
	{re(`(?i)^(?:Do\b|While\s+).*$`), KindLoop, "While"},
}

var vbClosers = []blockPattern{
	{re(`(?i)^End\s+(?:Class|Module)\s*$`), KindClass, ""},
	{re(`(?i)^End\s+(?:Sub|Function)\s*$`), KindMethod, ""},
	{re(`(?i)^End\s+If\s*$`), KindConditional, ""},
	{re(`(?i)^Next(?:\s+\w+)?\s*$`), KindLoop, ""},
	{re(`(?i)^(?:End\s+While|Wend|Loop)\s*$`), KindLoop, ""},
}

// Scan runs the block-balance bookkeeping over unmodified source without
// rewriting anything. It returns the frames still open at end-of-input and
// the line numbers of closers that matched nothing.
func Scan(source string, language lang.Language) (leftover []Frame, unmatched []int) {
	if language.KeywordDelimited() {
		return scanKeywords(source)
	}
	return scanBraces(source)
}

func scanKeywords(source string) ([]Frame, []int) {
	var stack []Frame
	var unmatched []int

	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "'") {
			continue
		}
		lineNo := i + 1

		closed := false
		for _, c := range vbClosers {
			if c.pattern.MatchString(line) {
				if idx := findCompatible(stack, c.kind); idx >= 0 {
					stack = append(stack[:idx], stack[idx+1:]...)
				} else {
					unmatched = append(unmatched, lineNo)
				}
				closed = true
				break
			}
		}
		if closed {
			continue
		}

		for _, o := range vbOpeners {
			if o.pattern.MatchString(line) {
				stack = append(stack, Frame{Kind: o.kind, Label: o.label, OpenedAt: lineNo})
				break
			}
		}
	}
	return stack, unmatched
}

// scanBraces counts brace pairs per line, skipping string literals,
// character literals and line comments.
func scanBraces(source string) ([]Frame, []int) {
	var stack []Frame
	var unmatched []int

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		inString := false
		inChar := false
		for j := 0; j < len(raw); j++ {
			ch := raw[j]
			switch {
			case inString:
				if ch == '\\' {
					j++
				} else if ch == '"' {
					inString = false
				}
			case inChar:
				if ch == '\\' {
					j++
				} else if ch == '\'' {
					inChar = false
				}
			case ch == '"':
				inString = true
			case ch == '\'':
				inChar = true
			case ch == '/' && j+1 < len(raw) && raw[j+1] == '/':
				j = len(raw)
			case ch == '{':
				stack = append(stack, Frame{Kind: KindOther, OpenedAt: lineNo})
			case ch == '}':
				if len(stack) == 0 {
					unmatched = append(unmatched, lineNo)
				} else {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return stack, unmatched
}
