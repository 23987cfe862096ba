package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vbridge/internal/lang"
	"vbridge/internal/parser"
)

const sampleVB = `Public Class Calculator
    Private total As Integer
    Public Property Name As String
    Public Function Add(a As Integer, b As Integer) As Integer
        Return a + b
    End Function
    Public Sub Reset()
    End Sub
End Class`

const sampleCS = `public class Calculator
{
    private int total;
    public string Name { get; set; }
    public int Add(int a, int b)
    {
        return a + b;
    }
    public void Reset()
    {
    }
}`

func TestExtract_VBNet(t *testing.T) {
	sum := Extract(sampleVB, lang.VBNet)

	require.Len(t, sum.Classes, 1)
	assert.Equal(t, Entry{Name: "Calculator", Line: 1}, sum.Classes[0])

	require.Len(t, sum.Methods, 2)
	assert.Equal(t, Method{Name: "Add", Line: 4, ReturnType: "Integer"}, sum.Methods[0])
	assert.Equal(t, Method{Name: "Reset", Line: 7}, sum.Methods[1])

	require.Len(t, sum.Properties, 2)
	assert.Equal(t, Property{Name: "total", Line: 2, Type: "Integer"}, sum.Properties[0])
	assert.Equal(t, Property{Name: "Name", Line: 3, Type: "String"}, sum.Properties[1])
}

func TestExtract_CSharp(t *testing.T) {
	sum := Extract(sampleCS, lang.CSharp)

	require.Len(t, sum.Classes, 1)
	assert.Equal(t, Entry{Name: "Calculator", Line: 1}, sum.Classes[0])

	require.Len(t, sum.Methods, 2)
	assert.Equal(t, Method{Name: "Add", Line: 5, ReturnType: "int"}, sum.Methods[0])
	assert.Equal(t, Method{Name: "Reset", Line: 9}, sum.Methods[1], "void return type is left empty")

	require.Len(t, sum.Properties, 2)
	assert.Equal(t, Property{Name: "total", Line: 3, Type: "int"}, sum.Properties[0])
	assert.Equal(t, Property{Name: "Name", Line: 4, Type: "string"}, sum.Properties[1])
}

func TestExtract_DuplicateNamesPreserved(t *testing.T) {
	src := "Public Sub Work()\nEnd Sub\nPublic Sub Work()\nEnd Sub"
	sum := Extract(src, lang.VBNet)

	require.Len(t, sum.Methods, 2)
	assert.Equal(t, 1, sum.Methods[0].Line)
	assert.Equal(t, 3, sum.Methods[1].Line)
}

func TestExtract_EmptySummaryIsValid(t *testing.T) {
	sum := Extract("x = 1\ny = x + 2", lang.VBNet)

	assert.NotNil(t, sum.Classes)
	assert.Empty(t, sum.Classes)
	assert.Empty(t, sum.Methods)
	assert.Empty(t, sum.Properties)
}

func TestExtract_CountsMatchAcrossDialects(t *testing.T) {
	vb := Extract(sampleVB, lang.VBNet)
	cs := Extract(sampleCS, lang.CSharp)

	assert.Equal(t, len(vb.Classes), len(cs.Classes))
	assert.Equal(t, len(vb.Methods), len(cs.Methods))
	assert.Equal(t, len(vb.Properties), len(cs.Properties))
}

func TestFromAST(t *testing.T) {
	root := &parser.Node{
		ID:   "root",
		Kind: "compilation_unit",
		Children: []*parser.Node{
			{Kind: "class_declaration", Text: "Public Class Calculator", StartLine: 1},
			{Kind: "method_declaration", Text: "Public Sub Reset()", StartLine: 2},
			{Kind: "property_declaration", Text: "Private total As Integer", StartLine: 3},
		},
	}

	sum := FromAST(root)

	require.Len(t, sum.Classes, 1)
	assert.Equal(t, 1, sum.Classes[0].Line)
	require.Len(t, sum.Methods, 1)
	assert.Equal(t, 2, sum.Methods[0].Line)
	require.Len(t, sum.Properties, 1)
	assert.Equal(t, 3, sum.Properties[0].Line)
}

func TestFromAST_NilRoot(t *testing.T) {
	sum := FromAST(nil)
	assert.Empty(t, sum.Classes)
	assert.Empty(t, sum.Methods)
	assert.Empty(t, sum.Properties)
}
