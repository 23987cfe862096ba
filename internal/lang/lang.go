package lang

import (
	"fmt"
	"strings"
)

// Language is a canonical tag for one of the three supported languages.
type Language string

const (
	VB6    Language = "vb6"
	VBNet  Language = "vbnet"
	CSharp Language = "csharp"
)

// Normalize maps the loose names accepted on the wire ("VB.NET", "C#",
// "c_sharp", "vb") onto canonical tags.
func Normalize(s string) (Language, error) {
	n := strings.ToLower(s)
	n = strings.NewReplacer(" ", "", ".", "", "_", "", "-", "").Replace(n)
	switch n {
	case "vb", "vb6", "visualbasic6":
		return VB6, nil
	case "vbnet", "visualbasic", "visualbasicnet":
		return VBNet, nil
	case "csharp", "c#", "cs", "csharpnet":
		return CSharp, nil
	}
	return "", fmt.Errorf("unsupported language: %s", s)
}

// KeywordDelimited reports whether the language marks blocks with paired
// keywords (Sub/End Sub) rather than braces.
func (l Language) KeywordDelimited() bool {
	return l == VB6 || l == VBNet
}

func (l Language) String() string {
	return string(l)
}
