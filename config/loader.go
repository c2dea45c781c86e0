// Package config loads the router configuration from YAML with
// environment overrides, and validates it against an embedded JSON
// schema before anything starts.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP and websocket listener settings.
type ServerConfig struct {
	Port                  int `yaml:"port" json:"port"`
	WSPort                int `yaml:"ws_port" json:"ws_port"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
}

// LLMConfig holds the model backend settings.
type LLMConfig struct {
	OllamaURL     string `yaml:"ollama_url" json:"ollama_url"`
	DefaultModel  string `yaml:"default_model" json:"default_model"`
	GuardModel    string `yaml:"guard_model" json:"guard_model"`
	NumCtx        int    `yaml:"num_ctx" json:"num_ctx"`
	CacheCapacity int    `yaml:"cache_capacity" json:"cache_capacity"`
	DebugHTTP     bool   `yaml:"debug_http" json:"debug_http"`
}

// RAGConfig holds the retrieval settings.
type RAGConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
	TopK    int    `yaml:"top_k" json:"top_k"`
}

// Config is the full router configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	LLM    LLMConfig    `yaml:"llm" json:"llm"`
	RAG    RAGConfig    `yaml:"rag" json:"rag"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  8000,
			WSPort:                8085,
			RequestTimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			OllamaURL:     "http://localhost:11434",
			DefaultModel:  string(DefaultModel),
			GuardModel:    "llama-guard3",
			NumCtx:        2048,
			CacheCapacity: 4,
		},
		RAG: RAGConfig{
			DataDir: "data",
			TopK:    3,
		},
	}
}

// Load reads the YAML config at path (optional), applies environment
// overrides and validates the result. A missing file is not an error;
// defaults apply.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			expanded := os.Expand(string(data), os.Getenv)
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnvInt("ROUTER_PORT", cfg.Server.Port)
	cfg.Server.WSPort = getEnvInt("WS_PORT", cfg.Server.WSPort)
	cfg.Server.RequestTimeoutSeconds = getEnvInt("REQUEST_TIMEOUT_SECONDS", cfg.Server.RequestTimeoutSeconds)

	cfg.LLM.OllamaURL = getEnv("OLLAMA_URL", cfg.LLM.OllamaURL)
	cfg.LLM.DefaultModel = getEnv("DEFAULT_MODEL", cfg.LLM.DefaultModel)
	cfg.LLM.GuardModel = getEnv("GUARD_MODEL", cfg.LLM.GuardModel)
	cfg.LLM.NumCtx = getEnvInt("LLM_NUM_CTX", cfg.LLM.NumCtx)
	cfg.LLM.CacheCapacity = getEnvInt("ENGINE_CACHE_CAPACITY", cfg.LLM.CacheCapacity)
	if getEnv("LLM_DEBUG_HTTP", "") != "" {
		cfg.LLM.DebugHTTP = true
	}

	cfg.RAG.DataDir = getEnv("RAG_DATA_DIR", cfg.RAG.DataDir)
	cfg.RAG.TopK = getEnvInt("RAG_TOP_K", cfg.RAG.TopK)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
