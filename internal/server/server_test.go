package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vbridge/internal/storage"
	"vbridge/internal/transpile"
)

const calculatorVB = `Public Class Calculator
    Public Function Add(a As Integer, b As Integer) As Integer
        Return a + b
    End Function
End Class`

func newTestServer(t *testing.T, store *storage.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(transpile.NewService(), store, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VB/C# Transpiler API v1.0", body["message"])
}

func TestHandleTranspile(t *testing.T) {
	srv := newTestServer(t, nil)

	var out transpileResponse
	postJSON(t, srv.URL+"/api/transpile", transpileRequest{
		Code:       calculatorVB,
		SourceLang: "vbnet",
		TargetLang: "csharp",
	}, &out)

	assert.True(t, out.Success)
	assert.Equal(t, transpile.MethodRuleBased, out.Method)
	assert.Contains(t, out.TranspiledCode, "public class Calculator {")
	assert.Empty(t, out.Errors)
}

func TestHandleTranspile_BadLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	var out transpileResponse
	postJSON(t, srv.URL+"/api/transpile", transpileRequest{
		Code:       "x = 1",
		SourceLang: "cobol",
		TargetLang: "csharp",
	}, &out)

	assert.False(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "unsupported language")
}

func TestHandleTranspile_MalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/transpile", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleParse(t *testing.T) {
	srv := newTestServer(t, nil)

	var out parseResponse
	postJSON(t, srv.URL+"/api/parse", parseRequest{
		Code:       calculatorVB,
		SourceLang: "vbnet",
	}, &out)

	assert.True(t, out.Success)
	require.NotNil(t, out.AST)
	assert.Equal(t, "compilation_unit", out.AST.Kind)
	require.NotNil(t, out.SemanticTree)
	require.Len(t, out.SemanticTree.Classes, 1)
	assert.Equal(t, "Calculator", out.SemanticTree.Classes[0].Name)
}

func TestHandleParse_BadLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	var out parseResponse
	postJSON(t, srv.URL+"/api/parse", parseRequest{Code: "x", SourceLang: "ada"}, &out)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "unsupported language")
}

func TestHandleValidate(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("balanced", func(t *testing.T) {
		var out validateResponse
		postJSON(t, srv.URL+"/api/validate", validateRequest{
			Code:     "Public Class C\nEnd Class",
			Language: "vbnet",
		}, &out)
		assert.True(t, out.Valid)
		assert.Empty(t, out.Errors)
	})

	t.Run("unclosed blocks", func(t *testing.T) {
		var out validateResponse
		postJSON(t, srv.URL+"/api/validate", validateRequest{
			Code:     "Public Class C\n    Public Sub M()",
			Language: "vbnet",
		}, &out)
		assert.False(t, out.Valid)
		require.Len(t, out.Errors, 2)
		assert.Equal(t, 1, out.Errors[0].Line)
		assert.Equal(t, 2, out.Errors[1].Line)
	})
}

func TestHandleMCPTest_NoURL(t *testing.T) {
	srv := newTestServer(t, nil)

	var out mcpTestResponse
	postJSON(t, srv.URL+"/api/mcp/test", mcpTestRequest{}, &out)

	assert.False(t, out.Success)
	assert.Equal(t, "no server url configured", out.Message)
}

func TestHandleMCPTest_Reachable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv := newTestServer(t, nil)

	var out mcpTestResponse
	postJSON(t, srv.URL+"/api/mcp/test", mcpTestRequest{ServerURL: backend.URL}, &out)

	assert.True(t, out.Success)
	assert.Equal(t, "Connection successful", out.Message)
}

func TestTranspile_RecordsHistory(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	srv := newTestServer(t, store)

	var out transpileResponse
	postJSON(t, srv.URL+"/api/transpile", transpileRequest{
		Code:       calculatorVB,
		SourceLang: "vbnet",
		TargetLang: "csharp",
	}, &out)
	require.True(t, out.Success)

	runs, err := store.RecentRuns(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "vbnet", runs[0].SourceLang)
	assert.Equal(t, "csharp", runs[0].TargetLang)
	assert.Equal(t, transpile.MethodRuleBased, runs[0].Method)
	assert.Equal(t, len(calculatorVB), runs[0].CodeLen)
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/transpile", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
