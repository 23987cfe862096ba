package transpile

import (
	"context"
	"fmt"

	"vbridge/internal/assist"
	"vbridge/internal/lang"
	"vbridge/internal/parser"
	"vbridge/internal/rewrite"
	"vbridge/internal/semantic"
	"vbridge/internal/validator"
)

// Provenance tags. A result always discloses which path produced it so
// degraded-confidence output is distinguishable from AI-assisted output.
const (
	MethodRuleBased  = "rule-based"
	MethodAIAssisted = "ai-assisted"
)

// Result is the outcome of one transpile request.
type Result struct {
	Code     string   `json:"code"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	Method   string   `json:"method"`
}

// Request describes one conversion.
type Request struct {
	Code       string
	SourceLang string
	TargetLang string
	UseAI      bool
	AI         assist.Options
}

// Service sequences parse, extraction, the optional AI-assisted rewrite
// and the rule-based rewrite with validation. It holds no per-request
// state, so one Service handles any number of concurrent requests.
type Service struct {
	// newRewriter builds the assist provider; swapped out in tests.
	newRewriter func(ctx context.Context, opts assist.Options) (assist.Rewriter, error)
}

func NewService() *Service {
	return &Service{newRewriter: assist.New}
}

// Parse returns the syntax tree and the semantic summary for one source.
// Parse failures are surfaced verbatim; a degraded line-pattern tree for
// languages without grammar support is not a failure.
func (s *Service) Parse(ctx context.Context, code, language string) (*parser.Node, semantic.Summary, error) {
	l, err := lang.Normalize(language)
	if err != nil {
		return nil, semantic.Summary{}, err
	}

	ast, err := parser.Parse(ctx, code, l)
	if err != nil {
		return nil, semantic.Summary{}, err
	}

	sum := semantic.Extract(code, l)
	if len(sum.Classes) == 0 && len(sum.Methods) == 0 && len(sum.Properties) == 0 {
		// The line patterns found nothing; fall back to classifying the
		// tree itself. Both empty just means a declaration-free script.
		sum = semantic.FromAST(ast)
	}
	return ast, sum, nil
}

// Transpile converts code between two languages. The AI-assisted path,
// when enabled and configured, is attempted first; any failure there falls
// through to the rule-based rewrite, which is the guaranteed baseline and
// is never skipped because of an AI error.
func (s *Service) Transpile(ctx context.Context, req Request) Result {
	res := Result{Code: req.Code, Warnings: []string{}, Errors: []string{}, Method: MethodRuleBased}

	src, err := lang.Normalize(req.SourceLang)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	dst, err := lang.Normalize(req.TargetLang)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	// The rule-based path never needs the tree, only the AI payload does,
	// so a degraded parse is a warning here rather than a failure.
	ast, err := parser.Parse(ctx, req.Code, src)
	if err != nil {
		ast = nil
		res.Warnings = append(res.Warnings, fmt.Sprintf("parse degraded: %v", err))
	}

	if req.UseAI && req.AI.Configured() {
		code, err := s.tryAssist(ctx, ast, req.Code, src, dst, req.AI)
		if err == nil {
			res.Code = code
			res.Method = MethodAIAssisted
			res.Warnings = append(res.Warnings, "transpiled using AI-assisted path")
			return res
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("AI path unavailable, falling back to rule-based rewrite: %v", err))
	}

	tables, err := route(src, dst)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	if len(tables) > 1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"two-step conversion (%s -> %s -> %s); extensive testing recommended", src, lang.VBNet, dst))
	}

	code := req.Code
	var leftover []rewrite.Frame
	for _, t := range tables {
		var warns []string
		code, warns, leftover = rewrite.Rewrite(code, t)
		res.Warnings = append(res.Warnings, warns...)
	}
	res.Code = code

	errs, warns := validator.CheckResult(req.Code, code, leftover, src)
	for _, i := range errs {
		res.Errors = append(res.Errors, i.Message)
	}
	for _, i := range warns {
		res.Warnings = append(res.Warnings, i.Message)
	}
	if advisory := reviewAdvisory(src, dst); advisory != "" {
		res.Warnings = append(res.Warnings, advisory)
	}
	return res
}

func (s *Service) tryAssist(ctx context.Context, ast *parser.Node, code string, src, dst lang.Language, opts assist.Options) (string, error) {
	rw, err := s.newRewriter(ctx, opts)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.EffectiveTimeout())
	defer cancel()

	return rw.Rewrite(ctx, assist.Request{
		AST:        ast,
		SourceCode: code,
		SourceLang: src,
		TargetLang: dst,
	})
}

// Validate is the live well-formedness check on unmodified source.
func (s *Service) Validate(code, language string) ([]validator.Issue, error) {
	l, err := lang.Normalize(language)
	if err != nil {
		return nil, err
	}
	return validator.CheckSource(code, l), nil
}

// TestAIConnection probes the configured assist server.
func (s *Service) TestAIConnection(ctx context.Context, opts assist.Options) (bool, string) {
	return assist.TestConnection(ctx, opts)
}

// route resolves the table chain for a language pair: a direct table when
// one exists, otherwise two hops through VB.NET.
func route(src, dst lang.Language) ([]*rewrite.Table, error) {
	if src == dst {
		return nil, fmt.Errorf("conversion from %s to %s not supported", src, dst)
	}
	if t, ok := rewrite.TableFor(src, dst); ok {
		return []*rewrite.Table{t}, nil
	}
	first, ok1 := rewrite.TableFor(src, lang.VBNet)
	second, ok2 := rewrite.TableFor(lang.VBNet, dst)
	if ok1 && ok2 {
		return []*rewrite.Table{first, second}, nil
	}
	return nil, fmt.Errorf("conversion from %s to %s not supported", src, dst)
}

func reviewAdvisory(src, dst lang.Language) string {
	switch {
	case src == lang.VB6 && dst == lang.VBNet:
		return "manual review recommended: some VB6 features are not directly compatible with VB.NET"
	case src == lang.VBNet && dst == lang.CSharp:
		return "converted VB.NET to C#; review Option Strict and type conversions"
	case src == lang.CSharp && dst == lang.VBNet:
		return "converted C# to VB.NET; review operator and equality semantics"
	case src == lang.VB6 && dst == lang.CSharp:
		return "converted VB6 to C# through VB.NET; review the intermediate assumptions"
	}
	return ""
}
