package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
	AI struct {
		Provider       string `yaml:"provider"` // "mcp" or "gemini"
		ServerURL      string `yaml:"server_url"`
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ai"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	var cfg Config

	// 2. Load YAML config (a missing file just means defaults)
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("VBRIDGE_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("VBRIDGE_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if url := os.Getenv("VBRIDGE_AI_URL"); url != "" {
		cfg.AI.ServerURL = url
	}
	if addr := os.Getenv("VBRIDGE_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	// 4. Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 30
	}

	return &cfg, nil
}
