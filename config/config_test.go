package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveModelDefault(t *testing.T) {
	model, err := ResolveModel("")
	if err != nil {
		t.Fatalf("Expected default model, got error: %v", err)
	}
	if model != DefaultModel {
		t.Errorf("Expected %s, got %s", DefaultModel, model)
	}
}

func TestResolveModelAllowlist(t *testing.T) {
	model, err := ResolveModel("gpt-oss")
	if err != nil {
		t.Fatalf("Expected allowlisted model, got error: %v", err)
	}
	if model != ModelGPTOSS {
		t.Errorf("Expected %s, got %s", ModelGPTOSS, model)
	}
}

func TestResolveModelUnknown(t *testing.T) {
	if _, err := ResolveModel("llama2"); err == nil {
		t.Error("Expected error for model outside the allowlist")
	}
}

func TestResolveModelTrimsWhitespace(t *testing.T) {
	model, err := ResolveModel("  mistral ")
	if err != nil {
		t.Fatalf("Expected trimmed model, got error: %v", err)
	}
	if model != ModelMistral {
		t.Errorf("Expected %s, got %s", ModelMistral, model)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}
	want := Defaults()
	if cfg.Server.Port != want.Server.Port {
		t.Errorf("Expected default port %d, got %d", want.Server.Port, cfg.Server.Port)
	}
	if cfg.LLM.DefaultModel != want.LLM.DefaultModel {
		t.Errorf("Expected default model %s, got %s", want.LLM.DefaultModel, cfg.LLM.DefaultModel)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9000\nllm:\n  default_model: gpt-oss\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.LLM.DefaultModel != "gpt-oss" {
		t.Errorf("Expected model gpt-oss, got %s", cfg.LLM.DefaultModel)
	}
	// Untouched sections keep their defaults.
	if cfg.RAG.TopK != 3 {
		t.Errorf("Expected default top_k 3, got %d", cfg.RAG.TopK)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	old, had := os.LookupEnv("ROUTER_PORT")
	os.Setenv("ROUTER_PORT", "1234")
	defer func() {
		if had {
			os.Setenv("ROUTER_PORT", old)
		} else {
			os.Unsetenv("ROUTER_PORT")
		}
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 1234 {
		t.Errorf("Expected env override port 1234, got %d", cfg.Server.Port)
	}
}

func TestLoadExpandsEnvVarsInYAML(t *testing.T) {
	old, had := os.LookupEnv("TEST_OLLAMA_URL")
	os.Setenv("TEST_OLLAMA_URL", "http://ollama.internal:11434")
	defer func() {
		if had {
			os.Setenv("TEST_OLLAMA_URL", old)
		} else {
			os.Unsetenv("TEST_OLLAMA_URL")
		}
	}()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "llm:\n  ollama_url: ${TEST_OLLAMA_URL}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.OllamaURL != "http://ollama.internal:11434" {
		t.Errorf("Expected expanded URL, got %s", cfg.LLM.OllamaURL)
	}
}

func TestValidateRejectsUnknownDefaultModel(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.DefaultModel = "llama2"
	if err := Validate(cfg); err == nil {
		t.Error("Expected validation to reject a model outside the allowlist")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	if err := Validate(cfg); err == nil {
		t.Error("Expected validation to reject port 0")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}
