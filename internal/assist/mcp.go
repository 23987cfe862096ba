package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vbridge/internal/parser"
)

// MCPClient calls a generic MCP-style rewrite server over HTTP JSON with
// an optional bearer credential and a fixed timeout.
type MCPClient struct {
	client    *http.Client
	serverURL string
	apiKey    string
}

type mcpContext struct {
	AST            *parser.Node `json:"ast"`
	SourceCode     string       `json:"source_code"`
	SourceLanguage string       `json:"source_language"`
	TargetLanguage string       `json:"target_language"`
}

type mcpPayload struct {
	Context mcpContext `json:"context"`
	Task    string     `json:"task"`
}

type mcpResponse struct {
	Result         string `json:"result"`
	TranspiledCode string `json:"transpiled_code"`
}

func NewMCPClient(serverURL, apiKey string, timeout time.Duration) *MCPClient {
	return &MCPClient{
		client:    &http.Client{Timeout: timeout},
		serverURL: serverURL,
		apiKey:    apiKey,
	}
}

func (c *MCPClient) Rewrite(ctx context.Context, r Request) (string, error) {
	task := r.Task
	if task == "" {
		task = fmt.Sprintf("Transpile the provided %s code to %s. Use the AST context provided.",
			r.SourceLang, r.TargetLang)
	}

	payload := mcpPayload{
		Context: mcpContext{
			AST:            r.AST,
			SourceCode:     r.SourceCode,
			SourceLanguage: r.SourceLang.String(),
			TargetLanguage: r.TargetLang.String(),
		},
		Task: task,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mcp server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed mcpResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed mcp response: %w", err)
	}
	code := parsed.Result
	if code == "" {
		code = parsed.TranspiledCode
	}
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("mcp server returned no code")
	}
	return cleanCodeFence(code), nil
}
