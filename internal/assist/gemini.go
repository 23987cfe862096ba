package assist

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiRewriter implements Rewriter against the Gemini API directly, for
// setups without an MCP server in front of the model.
type GeminiRewriter struct {
	client *genai.Client
	model  string
}

func NewGeminiRewriter(ctx context.Context, apiKey, model string) (*GeminiRewriter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiRewriter{client: client, model: model}, nil
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, r Request) (string, error) {
	task := r.Task
	if task == "" {
		task = fmt.Sprintf("Transpile the following %s code to %s.", r.SourceLang, r.TargetLang)
	}

	var sb strings.Builder
	sb.WriteString(task)
	sb.WriteString(" Respond with only the converted source code, no explanations.\n\n")
	sb.WriteString(r.SourceCode)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(sb.String()), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no code")
	}
	return cleanCodeFence(text), nil
}
