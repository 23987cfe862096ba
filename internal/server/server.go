package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"vbridge/internal/assist"
	"vbridge/internal/parser"
	"vbridge/internal/semantic"
	"vbridge/internal/storage"
	"vbridge/internal/transpile"
	"vbridge/internal/validator"
)

// Server exposes the transpile service over JSON REST.
type Server struct {
	svc   *transpile.Service
	store *storage.Store // optional; nil disables history
	cors  []string
}

func New(svc *transpile.Service, store *storage.Store, corsOrigins []string) *Server {
	return &Server{svc: svc, store: store, cors: corsOrigins}
}

type parseRequest struct {
	Code       string `json:"code"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang,omitempty"`
}

type parseResponse struct {
	Success      bool              `json:"success"`
	AST          *parser.Node      `json:"ast,omitempty"`
	SemanticTree *semantic.Summary `json:"semantic_tree,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type mcpConfig struct {
	Provider  string `json:"provider,omitempty"`
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key,omitempty"`
	Model     string `json:"model,omitempty"`
}

type transpileRequest struct {
	Code       string     `json:"code"`
	SourceLang string     `json:"source_lang"`
	TargetLang string     `json:"target_lang"`
	UseMCP     bool       `json:"use_mcp"`
	MCPConfig  *mcpConfig `json:"mcp_config,omitempty"`
}

type transpileResponse struct {
	Success        bool     `json:"success"`
	TranspiledCode string   `json:"transpiled_code,omitempty"`
	Warnings       []string `json:"warnings"`
	Errors         []string `json:"errors"`
	Method         string   `json:"method"`
}

type validateRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors []validator.Issue `json:"errors"`
}

type mcpTestRequest struct {
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key,omitempty"`
}

type mcpTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/", s.handleRoot)
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("POST /api/transpile", s.handleTranspile)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/mcp/test", s.handleMCPTest)
	return s.withCORS(mux)
}

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "VB/C# Transpiler API v1.0"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, parseResponse{Error: err.Error()})
		return
	}

	ast, sum, err := s.svc.Parse(r.Context(), req.Code, req.SourceLang)
	if err != nil {
		writeJSON(w, http.StatusOK, parseResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Success: true, AST: ast, SemanticTree: &sum})
}

func (s *Server) handleTranspile(w http.ResponseWriter, r *http.Request) {
	var req transpileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, transpileResponse{Errors: []string{err.Error()}, Warnings: []string{}})
		return
	}

	treq := transpile.Request{
		Code:       req.Code,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		UseAI:      req.UseMCP,
	}
	if req.MCPConfig != nil {
		treq.AI = assist.Options{
			Provider:  req.MCPConfig.Provider,
			ServerURL: req.MCPConfig.ServerURL,
			APIKey:    req.MCPConfig.APIKey,
			Model:     req.MCPConfig.Model,
		}
	}

	res := s.svc.Transpile(r.Context(), treq)
	s.recordRun(r.Context(), treq, res)

	writeJSON(w, http.StatusOK, transpileResponse{
		Success:        len(res.Errors) == 0,
		TranspiledCode: res.Code,
		Warnings:       res.Warnings,
		Errors:         res.Errors,
		Method:         res.Method,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validateResponse{Errors: []validator.Issue{{Message: err.Error()}}})
		return
	}

	issues, err := s.svc.Validate(req.Code, req.Language)
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Errors: []validator.Issue{{Message: err.Error()}}})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(issues) == 0, Errors: issues})
}

func (s *Server) handleMCPTest(w http.ResponseWriter, r *http.Request) {
	var req mcpTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, mcpTestResponse{Message: err.Error()})
		return
	}

	ok, msg := s.svc.TestAIConnection(r.Context(), assist.Options{
		ServerURL: req.ServerURL,
		APIKey:    req.APIKey,
	})
	writeJSON(w, http.StatusOK, mcpTestResponse{Success: ok, Message: msg})
}

func (s *Server) recordRun(ctx context.Context, req transpile.Request, res transpile.Result) {
	if s.store == nil {
		return
	}
	err := s.store.SaveRun(ctx, storage.Run{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Method:     res.Method,
		CodeLen:    len(req.Code),
		Warnings:   res.Warnings,
		Errors:     res.Errors,
	})
	if err != nil {
		log.Printf("failed to record run: %v", err)
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.cors) > 0 {
			origin = strings.Join(s.cors, ",")
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
