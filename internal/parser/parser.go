package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"vbridge/internal/lang"
)

const (
	maxDepth    = 50
	maxChildren = 20
	maxNodeText = 100
)

// Node is one vertex of the syntax tree handed to callers and to the
// AI-assisted rewrite payload. A tree is built once per parse and never
// mutated afterwards; the root node always has kind "compilation_unit".
type Node struct {
	ID        string  `json:"id"`
	Kind      string  `json:"type"`
	Text      string  `json:"text"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Children  []*Node `json:"children"`
}

// Parse turns source text into a syntax tree. C# goes through tree-sitter;
// the VB dialects have no grammar available, so they get a degraded
// line-pattern parse that still yields declaration nodes with line anchors.
func Parse(ctx context.Context, code string, language lang.Language) (*Node, error) {
	if language == lang.CSharp {
		return parseCSharp(ctx, code)
	}
	return parseByLines(code), nil
}

func parseCSharp(ctx context.Context, code string) (*Node, error) {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, []byte(code))
	if err != nil {
		return nil, fmt.Errorf("failed to parse C# source: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse C# source: no tree produced")
	}
	return fromSitter(root, []byte(code), 0), nil
}

func fromSitter(node *sitter.Node, source []byte, depth int) *Node {
	if depth > maxDepth {
		return &Node{ID: newID(), Kind: "max_depth_reached"}
	}

	n := &Node{
		ID:        newID(),
		Kind:      node.Type(),
		Text:      truncate(node.Content(source), maxNodeText),
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Children:  []*Node{},
	}
	if depth == 0 {
		n.ID = "root"
		n.Kind = "compilation_unit"
	}

	count := int(node.ChildCount())
	if count > maxChildren {
		count = maxChildren
	}
	for i := 0; i < count; i++ {
		n.Children = append(n.Children, fromSitter(node.Child(i), source, depth+1))
	}
	return n
}

// parseByLines builds a synthetic declaration tree for languages without
// grammar support. Only class, method and property openers become nodes.
func parseByLines(code string) *Node {
	lines := strings.Split(code, "\n")
	root := &Node{
		ID:        "root",
		Kind:      "compilation_unit",
		Text:      truncate(code, maxNodeText),
		StartLine: 1,
		EndLine:   len(lines),
		Children:  []*Node{},
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		kind := ""
		switch {
		case vbClassPattern.MatchString(line):
			kind = "class_declaration"
		case vbMethodPattern.MatchString(line):
			kind = "method_declaration"
		case vbPropertyPattern.MatchString(line), vbFieldPattern.MatchString(line):
			kind = "property_declaration"
		}
		if kind == "" {
			continue
		}
		root.Children = append(root.Children, &Node{
			ID:        newID(),
			Kind:      kind,
			Text:      truncate(line, maxNodeText),
			StartLine: i + 1,
			EndLine:   i + 1,
			Children:  []*Node{},
		})
	}
	return root
}

func newID() string {
	return uuid.NewString()[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
