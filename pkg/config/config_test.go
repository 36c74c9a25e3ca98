package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfigUsesFileAPIKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".airouter")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	data := []byte("api_keys:\n  anthropic: file-ant\n  openai: file-openai\n  google: file-google\n  deepseek: file-deepseek\n")
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "file-ant" || cfg.OpenAIAPIKey != "file-openai" {
		t.Fatalf("expected file API keys to be used, got %+v", cfg)
	}
}

func TestConfigEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("DEEPSEEK_API_KEY", "env-deepseek")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-ant" || cfg.OpenAIAPIKey != "env-openai" || cfg.GoogleAPIKey != "env-google" || cfg.DeepSeekAPIKey != "env-deepseek" {
		t.Fatalf("expected env API keys to be used")
	}
	if !cfg.HasProvider("anthropic") || cfg.HasProvider("unknown") {
		t.Fatal("HasProvider mismatch")
	}
}

func TestLoadDefaultRoutingConfig(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	routing := cfg.Routing
	if routing == nil {
		t.Fatal("expected default routing config")
	}
	if routing.Preferences["research"] != "google" || routing.Preferences["writing"] != "anthropic" {
		t.Errorf("unexpected default preferences: %v", routing.Preferences)
	}
	if routing.FallbackEnabled == nil || !*routing.FallbackEnabled {
		t.Error("fallback should default to enabled")
	}
	if routing.Learning.ContextWindow != 10 {
		t.Errorf("ContextWindow = %d, want 10", routing.Learning.ContextWindow)
	}
	if routing.Learning.CacheTTLSeconds != 300 {
		t.Errorf("CacheTTLSeconds = %d, want 300", routing.Learning.CacheTTLSeconds)
	}
}

func TestLoadRoutingConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	data := []byte(`monthly_budget: 25
cost_optimization: true
preferences:
  research: deepseek
learning:
  context_window: 5
  cache_ttl_seconds: 60
pricing:
  deepseek:
    input_per_1k: 0.0002
    output_per_1k: 0.001
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write routing config: %v", err)
	}

	cfg, err := LoadRoutingConfig(path)
	if err != nil {
		t.Fatalf("load routing config: %v", err)
	}
	if cfg.MonthlyBudget != 25 {
		t.Errorf("MonthlyBudget = %v, want 25", cfg.MonthlyBudget)
	}
	if !cfg.CostOptimization {
		t.Error("expected cost optimization enabled")
	}
	if cfg.Preferences["research"] != "deepseek" {
		t.Errorf("Preferences = %v", cfg.Preferences)
	}
	if cfg.Learning.ContextWindow != 5 || cfg.Learning.CacheTTLSeconds != 60 {
		t.Errorf("learning config = %+v", cfg.Learning)
	}
	if cfg.Pricing["deepseek"].InputPer1K != 0.0002 {
		t.Errorf("pricing = %+v", cfg.Pricing["deepseek"])
	}
	// Unset fields still pick up defaults.
	if cfg.FallbackEnabled == nil || !*cfg.FallbackEnabled {
		t.Error("fallback should default to enabled")
	}
}

func TestRoutingConfigValidate(t *testing.T) {
	cfg := DefaultRoutingConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := &RoutingConfig{MonthlyBudget: -1}
	applyRoutingDefaults(bad)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative budget")
	}

	bad = &RoutingConfig{Preferences: map[string]string{"research": ""}}
	applyRoutingDefaults(bad)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty preference target")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
