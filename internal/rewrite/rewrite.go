package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

const indentUnit = "    "

// Rewrite transforms source line-by-line through the table's ordered rules
// while tracking open blocks on a stack local to this call. It returns the
// rewritten text, non-fatal warnings, and whatever frames are still open at
// end-of-input; a non-empty leftover stack is the validator's problem, never
// a silent success.
func Rewrite(source string, table *Table) (string, []string, []Frame) {
	return RewriteWithStack(source, table, nil)
}

// RewriteWithStack is Rewrite with a pre-seeded block stack, used when a
// caller feeds the engine a fragment that starts inside open blocks.
func RewriteWithStack(source string, table *Table, initial []Frame) (string, []string, []Frame) {
	stack := append([]Frame(nil), initial...)
	var out []string
	var warnings []string

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, "")
			continue
		}

		// Token-level substitutions run before any block handling.
		for _, sub := range table.Tokens {
			line = sub.Pattern.ReplaceAllString(line, sub.Replacement)
		}

		rule, groups := match(table, line)
		if rule == nil {
			out = append(out, indent(len(stack))+line)
			warnings = append(warnings, fmt.Sprintf("no rule matched at line %d, passed through verbatim", lineNo))
			continue
		}

		text := rule.Template
		if rule.Render != nil {
			text = rule.Render(groups)
		} else if text != "" {
			text = expand(rule.Pattern, text, line)
		}

		switch rule.Effect.Op {
		case OpNone:
			if text == "" {
				continue // structural noise like a standalone "{"
			}
			depth := len(stack)
			if rule.AtParentDepth && depth > 0 {
				depth--
			}
			out = append(out, indent(depth)+text)

		case OpPush:
			out = append(out, indent(len(stack))+text)
			stack = append(stack, Frame{Kind: rule.Effect.Kind, Label: rule.Label, OpenedAt: lineNo})

		case OpPop:
			idx := findCompatible(stack, rule.Effect.Kind)
			if idx < 0 {
				out = append(out, indent(len(stack))+line)
				warnings = append(warnings, fmt.Sprintf("unmatched closer at line %d: %q", lineNo, line))
				continue
			}
			if idx != len(stack)-1 {
				warnings = append(warnings, fmt.Sprintf(
					"mismatched closer at line %d: %q closes the %s opened at line %d",
					lineNo, line, stack[idx].Kind, stack[idx].OpenedAt))
			}
			frame := stack[idx]
			stack = append(stack[:idx], stack[idx+1:]...)
			if table.SynthesizeClosers {
				out = append(out, indent(idx)+table.closer(frame))
			} else if text != "" {
				out = append(out, indent(idx)+text)
			}
		}
	}

	return strings.Join(out, "\n"), warnings, stack
}

// match finds the first rule whose pattern matches the line.
func match(table *Table, line string) (*Rule, []string) {
	for i := range table.Rules {
		r := &table.Rules[i]
		if m := r.Pattern.FindStringSubmatch(line); m != nil {
			return r, m
		}
	}
	return nil, nil
}

// expand substitutes captured groups into a replacement template.
func expand(pattern *regexp.Regexp, template, line string) string {
	m := pattern.FindStringSubmatchIndex(line)
	return string(pattern.ExpandString(nil, template, line, m))
}

// findCompatible returns the index of the nearest frame (from the top)
// whose kind matches the pop, or -1 when none does.
func findCompatible(stack []Frame, k BlockKind) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if k == KindAny || stack[i].Kind == k {
			return i
		}
	}
	return -1
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}
