package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vbridge/internal/lang"
	"vbridge/internal/parser"
)

const (
	defaultTimeout     = 30 * time.Second
	testConnectTimeout = 10 * time.Second
)

// Request carries everything the external rewrite service needs: the
// syntax tree, the raw source and the conversion task.
type Request struct {
	AST        *parser.Node
	SourceCode string
	SourceLang lang.Language
	TargetLang lang.Language
	Task       string
}

// Rewriter is the AI-assisted transpilation collaborator. Implementations
// must treat every failure as recoverable: the caller always has the
// rule-based path to fall back to.
type Rewriter interface {
	Rewrite(ctx context.Context, req Request) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider  string // "mcp" (default) or "gemini"
	ServerURL string
	APIKey    string
	Model     string
	Timeout   time.Duration
}

// EffectiveTimeout is the ceiling applied to one assist attempt.
func (o Options) EffectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// Configured reports whether the options describe a usable provider.
func (o Options) Configured() bool {
	switch strings.ToLower(strings.TrimSpace(o.Provider)) {
	case "gemini":
		return o.APIKey != ""
	default:
		return o.ServerURL != ""
	}
}

// New builds a Rewriter for the configured provider.
func New(ctx context.Context, opts Options) (Rewriter, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "mcp"
	}

	switch provider {
	case "mcp":
		if opts.ServerURL == "" {
			return nil, fmt.Errorf("mcp server url is required")
		}
		return NewMCPClient(opts.ServerURL, opts.APIKey, opts.EffectiveTimeout()), nil
	case "gemini":
		return NewGeminiRewriter(ctx, opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported assist provider: %s", opts.Provider)
	}
}

// TestConnection probes the configured MCP server and reports whether it
// answered. It never returns an error; failures become the message.
func TestConnection(ctx context.Context, opts Options) (bool, string) {
	if opts.ServerURL == "" {
		return false, "no server url configured"
	}

	ctx, cancel := context.WithTimeout(ctx, testConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.ServerURL, nil)
	if err != nil {
		return false, fmt.Sprintf("Error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("Error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return true, "Connection successful"
	}
	return false, fmt.Sprintf("Connection failed (status %d)", resp.StatusCode)
}

// cleanCodeFence strips a surrounding markdown code fence from model output.
func cleanCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
