package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"vbridge/internal/lang"
)

// Directional rule tables. Each table is built once and is immutable, so
// lookups are safe from any number of concurrent rewrites.
var directions = map[[2]lang.Language]*Table{
	{lang.VBNet, lang.CSharp}: vbnetToCSharp(),
	{lang.CSharp, lang.VBNet}: csharpToVBNet(),
	{lang.VB6, lang.VBNet}:    vb6ToVBNet(),
}

// TableFor returns the direct rule table for a language pair, if one exists.
// Pairs without a direct table are chained through VB.NET by the caller.
func TableFor(src, dst lang.Language) (*Table, bool) {
	t, ok := directions[[2]lang.Language{src, dst}]
	return t, ok
}

func re(s string) *regexp.Regexp {
	return regexp.MustCompile(s)
}

// vbTypeToCS maps VB literal type names onto their C# spellings.
var vbTypeToCS = map[string]string{
	"integer": "int",
	"string":  "string",
	"boolean": "bool",
	"double":  "double",
	"single":  "float",
	"long":    "long",
	"short":   "short",
	"byte":    "byte",
	"object":  "object",
	"decimal": "decimal",
	"char":    "char",
	"date":    "DateTime",
}

var csTypeToVB = map[string]string{
	"int":      "Integer",
	"string":   "String",
	"bool":     "Boolean",
	"double":   "Double",
	"float":    "Single",
	"long":     "Long",
	"short":    "Short",
	"byte":     "Byte",
	"object":   "Object",
	"decimal":  "Decimal",
	"char":     "Char",
	"DateTime": "Date",
	"var":      "Object",
}

func mapVBType(t string) string {
	if cs, ok := vbTypeToCS[strings.ToLower(t)]; ok {
		return cs
	}
	return t
}

func mapCSType(t string) string {
	if vb, ok := csTypeToVB[t]; ok {
		return vb
	}
	return t
}

var vbParam = regexp.MustCompile(`(?i)^(?:ByVal\s+|ByRef\s+|Optional\s+)?(\w+)\s+As\s+([\w.]+)$`)
var csParam = regexp.MustCompile(`^(?:ref\s+|out\s+)?([\w<>\[\].]+)\s+(\w+)$`)

// vbParamsToCS converts "a As Integer, b As String" into "int a, string b".
func vbParamsToCS(params string) string {
	if strings.TrimSpace(params) == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if m := vbParam.FindStringSubmatch(p); m != nil {
			out = append(out, mapVBType(m[2])+" "+m[1])
		} else {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// csParamsToVB converts "int a, string b" into "a As Integer, b As String".
func csParamsToVB(params string) string {
	if strings.TrimSpace(params) == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if m := csParam.FindStringSubmatch(p); m != nil {
			out = append(out, m[2]+" As "+mapCSType(m[1]))
		} else {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func vbnetToCSharp() *Table {
	return &Table{
		Source:            lang.VBNet,
		Target:            lang.CSharp,
		SynthesizeClosers: true,
		Tokens: []TokenSub{
			{re(`^'`), "//"},
			{re(`(?i)\bAndAlso\b`), "&&"},
			{re(`(?i)\bOrElse\b`), "||"},
			{re(`(?i)\bNot\s+`), "!"},
			{re(`\s+&\s+`), " + "},
			{re(`(?i)\bTrue\b`), "true"},
			{re(`(?i)\bFalse\b`), "false"},
			{re(`(?i)\bNothing\b`), "null"},
			{re(`\s*<>\s*`), " != "},
		},
		Rules: []Rule{
			{Pattern: re(`^(//.*)$`), Template: "$1"},

			// Class and module openers. More specific signatures sit above
			// the general ones so the first match is always the right one.
			{Pattern: re(`(?i)^Public\s+Class\s+(\w+)\s*$`), Template: "public class $1 {",
				Effect: StackOp{OpPush, KindClass}, Label: "Class"},
			{Pattern: re(`(?i)^Private\s+Class\s+(\w+)\s*$`), Template: "private class $1 {",
				Effect: StackOp{OpPush, KindClass}, Label: "Class"},
			{Pattern: re(`(?i)^(?:Friend\s+)?Class\s+(\w+)\s*$`), Template: "class $1 {",
				Effect: StackOp{OpPush, KindClass}, Label: "Class"},
			{Pattern: re(`(?i)^(?:Public\s+)?Module\s+(\w+)\s*$`), Template: "public static class $1 {",
				Effect: StackOp{OpPush, KindClass}, Label: "Module"},
			{Pattern: re(`(?i)^End\s+(?:Class|Module)\s*$`), Effect: StackOp{OpPop, KindClass}},

			// Methods.
			{Pattern: re(`(?i)^Public\s+(?:Shared\s+)?Function\s+(\w+)\s*\(([^)]*)\)\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("public %s %s(%s) {", mapVBType(g[3]), g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Function"},
			{Pattern: re(`(?i)^Private\s+(?:Shared\s+)?Function\s+(\w+)\s*\(([^)]*)\)\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("private %s %s(%s) {", mapVBType(g[3]), g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Function"},
			{Pattern: re(`(?i)^Function\s+(\w+)\s*\(([^)]*)\)\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s %s(%s) {", mapVBType(g[3]), g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Function"},
			{Pattern: re(`(?i)^Public\s+(?:Shared\s+)?Sub\s+(\w+)\s*\(([^)]*)\)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("public void %s(%s) {", g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Sub"},
			{Pattern: re(`(?i)^Private\s+(?:Shared\s+)?Sub\s+(\w+)\s*\(([^)]*)\)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("private void %s(%s) {", g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Sub"},
			{Pattern: re(`(?i)^Sub\s+(\w+)\s*\(([^)]*)\)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("void %s(%s) {", g[1], vbParamsToCS(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "Sub"},
			{Pattern: re(`(?i)^End\s+(?:Function|Sub)\s*$`), Effect: StackOp{OpPop, KindMethod}},

			// Properties become auto-properties; no block is opened.
			{Pattern: re(`(?i)^Public\s+Property\s+(\w+)\s*(?:\(\s*\))?\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("public %s %s { get; set; }", mapVBType(g[2]), g[1])
				}},
			{Pattern: re(`(?i)^Private\s+Property\s+(\w+)\s*(?:\(\s*\))?\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("private %s %s { get; set; }", mapVBType(g[2]), g[1])
				}},

			// Declarations.
			{Pattern: re(`(?i)^Dim\s+(\w+)\s+As\s+([\w.]+)\s*=\s*(.+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s %s = %s;", mapVBType(g[2]), g[1], g[3])
				}},
			{Pattern: re(`(?i)^Dim\s+(\w+)\s+As\s+([\w.]+)\s*$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s %s;", mapVBType(g[2]), g[1])
				}},

			{Pattern: re(`(?i)^Return\s+(.+)$`), Template: "return $1;"},
			{Pattern: re(`(?i)^Return\s*$`), Template: "return;"},

			// Conditionals.
			{Pattern: re(`(?i)^If\s+(.+)\s+Then\s*$`), Template: "if ($1) {",
				Effect: StackOp{OpPush, KindConditional}, Label: "If"},
			{Pattern: re(`(?i)^ElseIf\s+(.+)\s+Then\s*$`), Template: "} else if ($1) {", AtParentDepth: true},
			{Pattern: re(`(?i)^Else\s*$`), Template: "} else {", AtParentDepth: true},
			{Pattern: re(`(?i)^End\s+If\s*$`), Effect: StackOp{OpPop, KindConditional}},

			// Loops.
			{Pattern: re(`(?i)^For\s+Each\s+(\w+)\s+As\s+([\w.]+)\s+In\s+(.+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("foreach (%s %s in %s) {", mapVBType(g[2]), g[1], g[3])
				},
				Effect: StackOp{OpPush, KindLoop}, Label: "Next"},
			{Pattern: re(`(?i)^For\s+(\w+)(?:\s+As\s+([\w.]+))?\s*=\s*(.+?)\s+To\s+(.+?)\s+Step\s+(.+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("for (int %s = %s; %s <= %s; %s += %s) {", g[1], g[3], g[1], g[4], g[1], g[5])
				},
				Effect: StackOp{OpPush, KindLoop}, Label: "Next"},
			{Pattern: re(`(?i)^For\s+(\w+)(?:\s+As\s+([\w.]+))?\s*=\s*(.+?)\s+To\s+(.+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("for (int %s = %s; %s <= %s; %s++) {", g[1], g[3], g[1], g[4], g[1])
				},
				Effect: StackOp{OpPush, KindLoop}, Label: "Next"},
			{Pattern: re(`(?i)^Next(?:\s+\w+)?\s*$`), Effect: StackOp{OpPop, KindLoop}},
			{Pattern: re(`(?i)^(?:Do\s+)?While\s+(.+)$`), Template: "while ($1) {",
				Effect: StackOp{OpPush, KindLoop}, Label: "While"},
			{Pattern: re(`(?i)^(?:End\s+While|Loop)\s*$`), Effect: StackOp{OpPop, KindLoop}},

			// Plain statements: calls gain a semicolon, assignments too.
			{Pattern: re(`^([\w.]+\(.*\))\s*$`), Template: "$1;"},
			{Pattern: re(`^([\w.\[\]]+)\s*([-+*/]?=)\s*(.+)$`), Template: "$1 $2 $3;"},
		},
	}
}

func csharpToVBNet() *Table {
	return &Table{
		Source:            lang.CSharp,
		Target:            lang.VBNet,
		SynthesizeClosers: true,
		Tokens: []TokenSub{
			{re(`;\s*$`), ""},
			{re(`^//`), "'"},
			{re(`\s*!=\s*`), " <> "},
			{re(`\s*==\s*`), " = "},
			{re(`\s*&&\s*`), " AndAlso "},
			{re(`\s*\|\|\s*`), " OrElse "},
			{re(`!([A-Za-z_(])`), "Not $1"},
			{re(`\btrue\b`), "True"},
			{re(`\bfalse\b`), "False"},
			{re(`\bnull\b`), "Nothing"},
		},
		Rules: []Rule{
			{Pattern: re(`^('.*)$`), Template: "$1"},

			// A standalone opener brace belongs to the header line above it.
			{Pattern: re(`^\{$`)},
			// Brace closers carry no kind; they close whatever is nearest.
			{Pattern: re(`^\}$`), Effect: StackOp{OpPop, KindAny}},

			{Pattern: re(`^\}?\s*else\s+if\s*\((.+)\)\s*\{?$`), Template: "ElseIf $1 Then", AtParentDepth: true},
			{Pattern: re(`^\}?\s*else\s*\{?$`), Template: "Else", AtParentDepth: true},

			// Classes.
			{Pattern: re(`^public\s+static\s+class\s+(\w+)\s*\{?$`), Template: "Public Module $1",
				Effect: StackOp{OpPush, KindClass}, Label: "End Module"},
			{Pattern: re(`^public\s+(?:sealed\s+|abstract\s+)?class\s+(\w+)\s*\{?$`), Template: "Public Class $1",
				Effect: StackOp{OpPush, KindClass}, Label: "End Class"},
			{Pattern: re(`^private\s+class\s+(\w+)\s*\{?$`), Template: "Private Class $1",
				Effect: StackOp{OpPush, KindClass}, Label: "End Class"},
			{Pattern: re(`^internal\s+class\s+(\w+)\s*\{?$`), Template: "Friend Class $1",
				Effect: StackOp{OpPush, KindClass}, Label: "End Class"},
			{Pattern: re(`^class\s+(\w+)\s*\{?$`), Template: "Class $1",
				Effect: StackOp{OpPush, KindClass}, Label: "End Class"},

			// Auto-properties (no block; the braces live on the same line).
			{Pattern: re(`^(public|private)\s+([\w<>\[\]]+)\s+(\w+)\s*\{\s*get;\s*(?:set;\s*)?\}$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s Property %s() As %s", visibilityVB(g[1]), g[3], mapCSType(g[2]))
				}},

			// Methods: void before typed so "void" never parses as a type.
			{Pattern: re(`^(public|private|protected|internal)\s+(?:static\s+)?void\s+(\w+)\s*\(([^)]*)\)\s*\{?$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s Sub %s(%s)", visibilityVB(g[1]), g[2], csParamsToVB(g[3]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "End Sub"},
			{Pattern: re(`^(public|private|protected|internal)\s+(?:static\s+)?([\w<>\[\]]+)\s+(\w+)\s*\(([^)]*)\)\s*\{?$`),
				Render: func(g []string) string {
					return fmt.Sprintf("%s Function %s(%s) As %s", visibilityVB(g[1]), g[3], csParamsToVB(g[4]), mapCSType(g[2]))
				},
				Effect: StackOp{OpPush, KindMethod}, Label: "End Function"},

			// Conditionals and loops.
			{Pattern: re(`^if\s*\((.+)\)\s*\{?$`), Template: "If $1 Then",
				Effect: StackOp{OpPush, KindConditional}, Label: "End If"},
			{Pattern: re(`^foreach\s*\(\s*([\w<>\[\]]+)\s+(\w+)\s+in\s+(.+?)\)\s*\{?$`),
				Render: func(g []string) string {
					return fmt.Sprintf("For Each %s As %s In %s", g[2], mapCSType(g[1]), g[3])
				},
				Effect: StackOp{OpPush, KindLoop}, Label: "Next"},
			{Pattern: re(`^for\s*\(\s*(?:int\s+)?(\w+)\s*=\s*([^;]+);\s*\w+\s*(<=|<)\s*([^;]+);\s*\w+\+\+\s*\)\s*\{?$`),
				Render: func(g []string) string {
					limit := strings.TrimSpace(g[4])
					if g[3] == "<" {
						limit += " - 1"
					}
					return fmt.Sprintf("For %s As Integer = %s To %s", g[1], strings.TrimSpace(g[2]), limit)
				},
				Effect: StackOp{OpPush, KindLoop}, Label: "Next"},
			{Pattern: re(`^while\s*\((.+)\)\s*\{?$`), Template: "While $1",
				Effect: StackOp{OpPush, KindLoop}, Label: "End While"},

			// Declarations.
			{Pattern: re(`^(int|string|bool|double|float|long|short|byte|object|decimal|char|var)\s+(\w+)\s*=\s*(.+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("Dim %s As %s = %s", g[2], mapCSType(g[1]), g[3])
				}},
			{Pattern: re(`^(int|string|bool|double|float|long|short|byte|object|decimal|char)\s+(\w+)$`),
				Render: func(g []string) string {
					return fmt.Sprintf("Dim %s As %s", g[2], mapCSType(g[1]))
				}},

			{Pattern: re(`^return\s+(.+)$`), Template: "Return $1"},
			{Pattern: re(`^return$`), Template: "Return"},

			{Pattern: re(`^([\w.]+\(.*\))$`), Template: "$1"},
			{Pattern: re(`^([\w.\[\]]+)\s*=\s*(.+)$`), Template: "$1 = $2"},
		},
	}
}

func visibilityVB(v string) string {
	switch v {
	case "public":
		return "Public"
	case "private":
		return "Private"
	case "protected":
		return "Protected"
	case "internal":
		return "Friend"
	}
	return "Public"
}

// vb6ToVBNet upgrades the legacy dialect. Both sides are keyword-delimited,
// so closers map 1:1 and nothing is synthesized; the table still tracks
// blocks so imbalances surface the same way as in the other directions.
func vb6ToVBNet() *Table {
	return &Table{
		Source: lang.VB6,
		Target: lang.VBNet,
		Rules: []Rule{
			{Pattern: re(`^('.*)$`), Template: "$1"},

			// VB6 metadata lines have no .NET equivalent and are dropped.
			{Pattern: re(`(?i)^Attribute\s+VB_\w+.*$`)},
			{Pattern: re(`(?i)^Option\s+Explicit\s*$`), Template: "Option Explicit On"},

			// Single-line If has no closer and must not open a block.
			{Pattern: re(`(?i)^(If\s+.+\s+Then\s+\S.*)$`), Template: "$1"},

			{Pattern: re(`(?i)^((?:Public\s+|Private\s+)?Class\s+\w+)\s*$`), Template: "$1",
				Effect: StackOp{OpPush, KindClass}, Label: "Class"},
			{Pattern: re(`(?i)^End\s+Class\s*$`), Template: "End Class", Effect: StackOp{OpPop, KindClass}},

			{Pattern: re(`(?i)^((?:Public\s+|Private\s+|Friend\s+)?(?:Static\s+)?Sub\s+\w+.*)$`), Template: "$1",
				Effect: StackOp{OpPush, KindMethod}, Label: "Sub"},
			{Pattern: re(`(?i)^End\s+Sub\s*$`), Template: "End Sub", Effect: StackOp{OpPop, KindMethod}},
			{Pattern: re(`(?i)^((?:Public\s+|Private\s+|Friend\s+)?(?:Static\s+)?Function\s+\w+.*)$`), Template: "$1",
				Effect: StackOp{OpPush, KindMethod}, Label: "Function"},
			{Pattern: re(`(?i)^End\s+Function\s*$`), Template: "End Function", Effect: StackOp{OpPop, KindMethod}},

			{Pattern: re(`(?i)^(If\s+.+\s+Then)\s*$`), Template: "$1",
				Effect: StackOp{OpPush, KindConditional}, Label: "If"},
			{Pattern: re(`(?i)^(ElseIf\s+.+\s+Then)\s*$`), Template: "$1", AtParentDepth: true},
			{Pattern: re(`(?i)^Else\s*$`), Template: "Else", AtParentDepth: true},
			{Pattern: re(`(?i)^End\s+If\s*$`), Template: "End If", Effect: StackOp{OpPop, KindConditional}},

			{Pattern: re(`(?i)^(For\s+.+)$`), Template: "$1",
				Effect: StackOp{OpPush, KindLoop}, Label: "For"},
			{Pattern: re(`(?i)^Next(?:\s+\w+)?\s*$`), Template: "Next", Effect: StackOp{OpPop, KindLoop}},
			{Pattern: re(`(?i)^(While\s+.+)$`), Template: "$1",
				Effect: StackOp{OpPush, KindLoop}, Label: "While"},
			{Pattern: re(`(?i)^Wend\s*$`), Template: "End While", Effect: StackOp{OpPop, KindLoop}},
			{Pattern: re(`(?i)^(Do\b.*)$`), Template: "$1",
				Effect: StackOp{OpPush, KindLoop}, Label: "Do"},
			{Pattern: re(`(?i)^Loop\s*$`), Template: "Loop", Effect: StackOp{OpPop, KindLoop}},

			// Legacy statement forms.
			{Pattern: re(`(?i)^Set\s+([\w.]+)\s*=\s*(.+)$`), Template: "$1 = $2"},
			{Pattern: re(`(?i)^Let\s+([\w.]+)\s*=\s*(.+)$`), Template: "$1 = $2"},
			{Pattern: re(`(?i)^Call\s+(.+)$`), Template: "$1"},
			{Pattern: re(`(?i)^(Exit\s+(?:Sub|Function|For|Do))\s*$`), Template: "$1"},

			{Pattern: re(`(?i)^(Dim\s+.+)$`), Template: "$1"},
			{Pattern: re(`^([\w.]+\(.*\))$`), Template: "$1"},
			{Pattern: re(`^([\w.\[\]]+)\s*=\s*(.+)$`), Template: "$1 = $2"},
		},
	}
}
