package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vbridge/internal/lang"
)

const calculatorVB = `Public Class Calculator
    Public Function Add(a As Integer, b As Integer) As Integer
        Return a + b
    End Function
End Class`

const calculatorCS = `public class Calculator {
    public int Add(int a, int b) {
        return a + b;
    }
}`

func mustTable(t *testing.T, src, dst lang.Language) *Table {
	t.Helper()
	table, ok := TableFor(src, dst)
	require.True(t, ok, "table %s -> %s should exist", src, dst)
	return table
}

func TestRewrite_VBNetToCSharp_Calculator(t *testing.T) {
	out, warnings, stack := Rewrite(calculatorVB, mustTable(t, lang.VBNet, lang.CSharp))

	assert.Empty(t, warnings)
	assert.Empty(t, stack, "balanced input should leave an empty stack")

	assert.Contains(t, out, "class Calculator")
	assert.Contains(t, out, "int Add(int a, int b)")
	assert.Contains(t, out, "return a + b;")
	assert.Equal(t, 2, strings.Count(out, "}"), "one closing brace per converted block")
	assert.Equal(t, 2, strings.Count(out, "{"), "one opening brace per converted block")
}

func TestRewrite_CSharpToVBNet_Calculator(t *testing.T) {
	out, warnings, stack := Rewrite(calculatorCS, mustTable(t, lang.CSharp, lang.VBNet))

	assert.Empty(t, warnings)
	assert.Empty(t, stack)

	assert.Contains(t, out, "Public Class Calculator")
	assert.Contains(t, out, "Public Function Add(a As Integer, b As Integer) As Integer")
	assert.Contains(t, out, "Return a + b")
	assert.Contains(t, out, "End Function")
	assert.Contains(t, out, "End Class")
	assert.NotContains(t, out, "{")
	assert.NotContains(t, out, ";")
}

func TestRewrite_RoundTrip_Stable(t *testing.T) {
	toCS := mustTable(t, lang.VBNet, lang.CSharp)
	toVB := mustTable(t, lang.CSharp, lang.VBNet)

	cs, _, stack := Rewrite(calculatorVB, toCS)
	require.Empty(t, stack)
	vb, _, stack := Rewrite(cs, toVB)
	require.Empty(t, stack)

	assert.Equal(t, calculatorVB, vb, "calculator should survive a full round trip")
}

func TestRewrite_NoRuleMatched(t *testing.T) {
	out, warnings, stack := Rewrite("Beep Boop 42", mustTable(t, lang.VBNet, lang.CSharp))

	assert.Equal(t, "Beep Boop 42", out, "unmatched line passes through unchanged")
	require.Len(t, warnings, 1, "exactly one warning per unmatched line")
	assert.Contains(t, warnings[0], "no rule matched at line 1")
	assert.Empty(t, stack)
}

func TestRewrite_UnmatchedCloser(t *testing.T) {
	out, warnings, stack := Rewrite("End Class", mustTable(t, lang.VBNet, lang.CSharp))

	assert.Equal(t, "End Class", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unmatched closer at line 1")
	assert.Empty(t, stack)
}

func TestRewrite_MismatchedCloser_PopsNearestCompatible(t *testing.T) {
	src := strings.Join([]string{
		"Public Class C",
		"    Public Sub M()",
		"End Class",
	}, "\n")

	out, warnings, stack := Rewrite(src, mustTable(t, lang.VBNet, lang.CSharp))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "mismatched closer at line 3")

	// The class frame was popped even though a method was still open.
	require.Len(t, stack, 1)
	assert.Equal(t, KindMethod, stack[0].Kind)
	assert.Equal(t, 2, stack[0].OpenedAt)

	assert.Contains(t, out, "public class C {")
	assert.Contains(t, out, "}")
}

func TestRewrite_NestedBlocksIndentation(t *testing.T) {
	src := strings.Join([]string{
		"Public Class C",
		"    Public Sub M()",
		"        If x > 1 Then",
		"            Return",
		"        End If",
		"    End Sub",
		"End Class",
	}, "\n")

	out, warnings, stack := Rewrite(src, mustTable(t, lang.VBNet, lang.CSharp))
	require.Empty(t, warnings)
	require.Empty(t, stack)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "public class C {", lines[0])
	assert.Equal(t, "    public void M() {", lines[1])
	assert.Equal(t, "        if (x > 1) {", lines[2])
	assert.Equal(t, "            return;", lines[3])
	assert.Equal(t, "        }", lines[4])
	assert.Equal(t, "    }", lines[5])
	assert.Equal(t, "}", lines[6])
}

func TestRewrite_ElseChain(t *testing.T) {
	src := strings.Join([]string{
		"If a > b Then",
		"    x = 1",
		"ElseIf a < b Then",
		"    x = 2",
		"Else",
		"    x = 3",
		"End If",
	}, "\n")

	out, warnings, stack := Rewrite(src, mustTable(t, lang.VBNet, lang.CSharp))
	require.Empty(t, warnings)
	require.Empty(t, stack)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "if (a > b) {", lines[0])
	assert.Equal(t, "    x = 1;", lines[1])
	assert.Equal(t, "} else if (a < b) {", lines[2])
	assert.Equal(t, "} else {", lines[4])
	assert.Equal(t, "}", lines[6])
}

func TestRewrite_TokenSubstitutions(t *testing.T) {
	table := mustTable(t, lang.VBNet, lang.CSharp)

	t.Run("boolean operators", func(t *testing.T) {
		out, _, _ := Rewrite("If a AndAlso Not b OrElse c Then\nEnd If", table)
		assert.Contains(t, out, "if (a && !b || c) {")
	})

	t.Run("string concatenation", func(t *testing.T) {
		out, _, _ := Rewrite(`greeting = "Hello " & name`, table)
		assert.Contains(t, out, `greeting = "Hello " + name;`)
	})

	t.Run("comment leader", func(t *testing.T) {
		out, warnings, _ := Rewrite("' adds numbers", table)
		assert.Equal(t, "// adds numbers", out)
		assert.Empty(t, warnings)
	})

	t.Run("literals", func(t *testing.T) {
		out, _, _ := Rewrite("flag = True\nother = Nothing", table)
		assert.Contains(t, out, "flag = true;")
		assert.Contains(t, out, "other = null;")
	})
}

func TestRewrite_CSharpBraceOnOwnLine(t *testing.T) {
	src := strings.Join([]string{
		"public class Calculator",
		"{",
		"    public int Add(int a, int b)",
		"    {",
		"        return a + b;",
		"    }",
		"}",
	}, "\n")

	out, warnings, stack := Rewrite(src, mustTable(t, lang.CSharp, lang.VBNet))
	require.Empty(t, warnings)
	require.Empty(t, stack)

	assert.Contains(t, out, "Public Class Calculator")
	assert.Contains(t, out, "End Function")
	assert.Contains(t, out, "End Class")
}

func TestRewrite_CSharpLoops(t *testing.T) {
	table := mustTable(t, lang.CSharp, lang.VBNet)

	t.Run("for with exclusive bound", func(t *testing.T) {
		out, _, stack := Rewrite("for (int i = 0; i < 10; i++) {\n}", table)
		assert.Contains(t, out, "For i As Integer = 0 To 10 - 1")
		assert.Contains(t, out, "Next")
		assert.Empty(t, stack)
	})

	t.Run("foreach", func(t *testing.T) {
		out, _, stack := Rewrite("foreach (string s in names) {\n}", table)
		assert.Contains(t, out, "For Each s As String In names")
		assert.Contains(t, out, "Next")
		assert.Empty(t, stack)
	})

	t.Run("while", func(t *testing.T) {
		out, _, stack := Rewrite("while (x > 0) {\n}", table)
		assert.Contains(t, out, "While x > 0")
		assert.Contains(t, out, "End While")
		assert.Empty(t, stack)
	})
}

func TestRewrite_VB6ToVBNet(t *testing.T) {
	src := strings.Join([]string{
		"Attribute VB_Name = \"Greeter\"",
		"Public Sub Greet()",
		"    Dim name As String",
		"    Set obj = thing",
		"    Call Log(name)",
		"End Sub",
	}, "\n")

	out, warnings, stack := Rewrite(src, mustTable(t, lang.VB6, lang.VBNet))
	require.Empty(t, warnings)
	require.Empty(t, stack)

	assert.NotContains(t, out, "Attribute")
	assert.NotContains(t, out, "Set ")
	assert.NotContains(t, out, "Call ")
	assert.Contains(t, out, "Public Sub Greet()")
	assert.Contains(t, out, "obj = thing")
	assert.Contains(t, out, "Log(name)")
	assert.Contains(t, out, "End Sub")
}

func TestRewrite_VB6Wend(t *testing.T) {
	out, warnings, stack := Rewrite("While x > 0\nWend", mustTable(t, lang.VB6, lang.VBNet))
	require.Empty(t, warnings)
	require.Empty(t, stack)
	assert.Contains(t, out, "While x > 0")
	assert.Contains(t, out, "End While")
}

func TestRewrite_LeftoverStackReported(t *testing.T) {
	src := "Public Class C\n    Public Sub M()"
	_, _, stack := Rewrite(src, mustTable(t, lang.VBNet, lang.CSharp))

	require.Len(t, stack, 2)
	assert.Equal(t, KindClass, stack[0].Kind)
	assert.Equal(t, 1, stack[0].OpenedAt)
	assert.Equal(t, KindMethod, stack[1].Kind)
	assert.Equal(t, 2, stack[1].OpenedAt)
}

func TestRewriteWithStack_SeededFrames(t *testing.T) {
	initial := []Frame{{Kind: KindClass, Label: "Class", OpenedAt: 1}}
	out, warnings, stack := RewriteWithStack("End Class", mustTable(t, lang.VBNet, lang.CSharp), initial)

	assert.Equal(t, "}", out)
	assert.Empty(t, warnings)
	assert.Empty(t, stack)
}

func TestScan_KeywordBalance(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		leftover, unmatched := Scan(calculatorVB, lang.VBNet)
		assert.Empty(t, leftover)
		assert.Empty(t, unmatched)
	})

	t.Run("three unclosed openers", func(t *testing.T) {
		src := "Public Class A\n    Public Sub B()\n        If x Then"
		leftover, unmatched := Scan(src, lang.VBNet)
		require.Len(t, leftover, 3)
		assert.Equal(t, 1, leftover[0].OpenedAt)
		assert.Equal(t, 2, leftover[1].OpenedAt)
		assert.Equal(t, 3, leftover[2].OpenedAt)
		assert.Empty(t, unmatched)
	})

	t.Run("stray closer", func(t *testing.T) {
		leftover, unmatched := Scan("End Sub", lang.VBNet)
		assert.Empty(t, leftover)
		assert.Equal(t, []int{1}, unmatched)
	})
}

func TestScan_Braces(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		leftover, unmatched := Scan(calculatorCS, lang.CSharp)
		assert.Empty(t, leftover)
		assert.Empty(t, unmatched)
	})

	t.Run("braces in strings ignored", func(t *testing.T) {
		leftover, unmatched := Scan(`string s = "{{{";`, lang.CSharp)
		assert.Empty(t, leftover)
		assert.Empty(t, unmatched)
	})

	t.Run("braces in comments ignored", func(t *testing.T) {
		leftover, unmatched := Scan("// {{{\nint x;", lang.CSharp)
		assert.Empty(t, leftover)
		assert.Empty(t, unmatched)
	})

	t.Run("unclosed", func(t *testing.T) {
		leftover, _ := Scan("class C {", lang.CSharp)
		require.Len(t, leftover, 1)
		assert.Equal(t, 1, leftover[0].OpenedAt)
	})
}
