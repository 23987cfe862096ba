package semantic

import (
	"regexp"
	"strings"

	"vbridge/internal/lang"
	"vbridge/internal/parser"
)

// Summary is a flat, line-anchored inventory of top-level declarations.
// It is a trace of the source in declaration order, not a symbol table:
// duplicate names stay as separate entries, and it is rebuilt from the
// current source on every request.
type Summary struct {
	Classes    []Entry    `json:"classes"`
	Methods    []Method   `json:"methods"`
	Properties []Property `json:"properties"`
}

type Entry struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

type Method struct {
	Name       string `json:"name"`
	Line       int    `json:"line"`
	ReturnType string `json:"return_type,omitempty"`
}

type Property struct {
	Name string `json:"name"`
	Line int    `json:"line"`
	Type string `json:"type,omitempty"`
}

var (
	vbClass    = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+|Friend\s+)?(?:Class|Module)\s+(\w+)`)
	vbMethod   = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+|Protected\s+|Friend\s+)?(?:Shared\s+)?(?:Sub|Function)\s+(\w+)\s*\([^)]*\)(?:\s+As\s+(\w+))?`)
	vbProperty = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+)?Property\s+(\w+)\s*(?:\(\s*\))?(?:\s+As\s+(\w+))?`)
	vbField    = regexp.MustCompile(`(?i)^(?:Dim|Public|Private)\s+(\w+)\s+As\s+(\w+)\s*$`)

	csClass    = regexp.MustCompile(`^(?:public\s+|private\s+|internal\s+|protected\s+)?(?:static\s+|sealed\s+|abstract\s+)*class\s+(\w+)`)
	csMethod   = regexp.MustCompile(`^(?:public|private|protected|internal)\s+(?:static\s+)?([A-Za-z_][\w<>\[\]]*)\s+(\w+)\s*\(`)
	csProperty = regexp.MustCompile(`^(?:public|private|protected|internal)\s+(?:static\s+)?([A-Za-z_][\w<>\[\]]*)\s+(\w+)\s*\{\s*get;`)
	csField    = regexp.MustCompile(`^(?:public|private|protected|internal)\s+(?:static\s+|readonly\s+)*([A-Za-z_][\w<>\[\]]*)\s+(\w+)\s*(?:=[^;]*)?;`)
)

// Extract scans source lines and classifies each one against the
// declaration patterns for the given language. An input without any
// declarations yields an empty summary, which is valid for plain scripts.
func Extract(code string, language lang.Language) Summary {
	s := Summary{
		Classes:    []Entry{},
		Methods:    []Method{},
		Properties: []Property{},
	}

	for i, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if language.KeywordDelimited() {
			if m := vbClass.FindStringSubmatch(line); m != nil {
				s.Classes = append(s.Classes, Entry{Name: m[1], Line: lineNo})
				continue
			}
			if m := vbMethod.FindStringSubmatch(line); m != nil {
				s.Methods = append(s.Methods, Method{Name: m[1], Line: lineNo, ReturnType: m[2]})
				continue
			}
			if m := vbProperty.FindStringSubmatch(line); m != nil {
				s.Properties = append(s.Properties, Property{Name: m[1], Line: lineNo, Type: m[2]})
				continue
			}
			if m := vbField.FindStringSubmatch(line); m != nil {
				s.Properties = append(s.Properties, Property{Name: m[1], Line: lineNo, Type: m[2]})
			}
			continue
		}

		if m := csClass.FindStringSubmatch(line); m != nil {
			s.Classes = append(s.Classes, Entry{Name: m[1], Line: lineNo})
			continue
		}
		if m := csProperty.FindStringSubmatch(line); m != nil {
			s.Properties = append(s.Properties, Property{Name: m[2], Line: lineNo, Type: m[1]})
			continue
		}
		if m := csMethod.FindStringSubmatch(line); m != nil {
			if m[1] == "class" {
				continue
			}
			ret := m[1]
			if ret == "void" {
				ret = ""
			}
			s.Methods = append(s.Methods, Method{Name: m[2], Line: lineNo, ReturnType: ret})
			continue
		}
		if m := csField.FindStringSubmatch(line); m != nil {
			s.Properties = append(s.Properties, Property{Name: m[2], Line: lineNo, Type: m[1]})
		}
	}
	return s
}

// FromAST classifies syntax nodes by kind when a full parse is available.
// The walk order follows the tree, so entries stay in source order.
func FromAST(root *parser.Node) Summary {
	s := Summary{
		Classes:    []Entry{},
		Methods:    []Method{},
		Properties: []Property{},
	}
	var walk func(n *parser.Node)
	walk = func(n *parser.Node) {
		if n == nil {
			return
		}
		kind := strings.ToLower(n.Kind)
		name := strings.TrimSpace(truncate(n.Text, 50))
		switch {
		case strings.Contains(kind, "class"):
			s.Classes = append(s.Classes, Entry{Name: name, Line: n.StartLine})
		case strings.Contains(kind, "method"), strings.Contains(kind, "function"):
			s.Methods = append(s.Methods, Method{Name: name, Line: n.StartLine})
		case strings.Contains(kind, "property"), strings.Contains(kind, "field"):
			s.Properties = append(s.Properties, Property{Name: name, Line: n.StartLine})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
