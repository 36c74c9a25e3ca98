package config

import (
	"fmt"
	"os"

	"github.com/draftforge/airouter/pkg/provider"
	"gopkg.in/yaml.v3"
)

// RoutingConfig holds the routing and budget configuration.
type RoutingConfig struct {
	MonthlyBudget    float64 `yaml:"monthly_budget,omitempty"`
	FallbackEnabled  *bool   `yaml:"fallback_enabled,omitempty"`
	CostOptimization bool    `yaml:"cost_optimization,omitempty"`

	// Preferences maps a task type to its preferred provider.
	Preferences map[string]string `yaml:"preferences,omitempty"`

	// FallbackOrder is the provider order used when the preferred
	// provider is unavailable.
	FallbackOrder []string `yaml:"fallback_order,omitempty"`

	Learning LearningConfig `yaml:"learning,omitempty"`
	Pricing  PricingConfig  `yaml:"pricing,omitempty"`
}

// LearningConfig holds the context-aware router's knobs.
type LearningConfig struct {
	Enabled         *bool `yaml:"enabled,omitempty"`
	ContextWindow   int   `yaml:"context_window,omitempty"`
	CacheTTLSeconds int   `yaml:"cache_ttl_seconds,omitempty"`
}

// PricingConfig maps provider name to per-1k token pricing.
type PricingConfig map[string]provider.Pricing

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{
		MonthlyBudget: 50,
		Preferences: map[string]string{
			"research": "google",
			"analysis": "google",
			"writing":  "anthropic",
			"review":   "anthropic",
		},
		FallbackOrder: []string{"google", "anthropic", "openai", "deepseek"},
		Pricing: PricingConfig{
			"google":    {InputPer1K: 0.00125, OutputPer1K: 0.005},
			"anthropic": {InputPer1K: 0.003, OutputPer1K: 0.015},
			"openai":    {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"deepseek":  {InputPer1K: 0.00027, OutputPer1K: 0.0011},
		},
	}
	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg.FallbackEnabled == nil {
		enabled := true
		cfg.FallbackEnabled = &enabled
	}
	if cfg.Learning.Enabled == nil {
		enabled := true
		cfg.Learning.Enabled = &enabled
	}
	if cfg.Learning.ContextWindow == 0 {
		cfg.Learning.ContextWindow = 10
	}
	if cfg.Learning.CacheTTLSeconds == 0 {
		cfg.Learning.CacheTTLSeconds = 300
	}
}

// Validate reports configuration errors that would misroute requests.
func (cfg *RoutingConfig) Validate() error {
	if cfg.MonthlyBudget < 0 {
		return fmt.Errorf("monthly_budget must not be negative")
	}
	if cfg.Learning.ContextWindow < 0 {
		return fmt.Errorf("learning.context_window must not be negative")
	}
	for task, providerName := range cfg.Preferences {
		if providerName == "" {
			return fmt.Errorf("preference for task %q names no provider", task)
		}
	}
	return nil
}
