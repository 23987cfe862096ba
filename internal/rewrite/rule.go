package rewrite

import (
	"regexp"

	"vbridge/internal/lang"
)

// BlockKind classifies an open syntactic block on the rewrite stack.
type BlockKind int

const (
	KindOther BlockKind = iota
	KindClass
	KindMethod
	KindConditional
	KindLoop
	// KindAny is only valid inside a pop effect: brace closers carry no
	// kind of their own, so they match whatever block is nearest.
	KindAny
)

func (k BlockKind) String() string {
	switch k {
	case KindOther:
		return "code"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindConditional:
		return "conditional"
	case KindLoop:
		return "loop"
	case KindAny:
		return "any"
	}
	return "block"
}

// Frame is one open block. Frames live only on the stack of a single
// rewrite invocation and never escape it except as the leftover stack
// handed to the validator.
type Frame struct {
	Kind BlockKind
	// Label is the closing token to synthesize when converting into a
	// keyword-delimited target ("End Class", "End Function", "Next").
	Label    string
	OpenedAt int
}

// OpCode selects the stack operation a rule performs.
type OpCode int

const (
	OpNone OpCode = iota
	OpPush
	OpPop
)

// StackOp is the side effect a rule applies to the block stack. It is a
// first-class value so every rule's stack behavior can be matched
// exhaustively instead of hiding in replacement text.
type StackOp struct {
	Op   OpCode
	Kind BlockKind
}

// Rule is one directional pattern-to-replacement mapping. Rules are
// hand-ordered inside a Table; the first rule whose Pattern matches a
// trimmed line wins.
type Rule struct {
	Pattern  *regexp.Regexp
	Template string
	// Render builds the output line from the submatches when template
	// expansion alone cannot express the conversion (parameter lists,
	// type mapping). When set, it takes precedence over Template.
	Render func(groups []string) string
	Effect StackOp
	// Label is stored on the frame pushed by this rule; see Frame.Label.
	Label string
	// AtParentDepth emits the line one indent level shallower than the
	// current stack depth (else/elseif re-openers).
	AtParentDepth bool
}

// TokenSub is a token-level substitution orthogonal to block structure.
// Substitutions run on every line before rule matching and never touch
// the stack.
type TokenSub struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Table is the ordered rule set for one (source, target) direction.
type Table struct {
	Source lang.Language
	Target lang.Language
	Tokens []TokenSub
	Rules  []Rule
	// SynthesizeClosers is set when the target's delimiter style differs
	// from the source's: every pop then emits the target's own closing
	// token instead of the rule's template.
	SynthesizeClosers bool
}

// closer returns the closing token to synthesize for a popped frame.
func (t *Table) closer(f Frame) string {
	if t.Target == lang.CSharp {
		return "}"
	}
	if f.Label != "" {
		return f.Label
	}
	switch f.Kind {
	case KindClass:
		return "End Class"
	case KindMethod:
		return "End Sub"
	case KindConditional:
		return "End If"
	case KindLoop:
		return "Next"
	}
	return "End"
}
