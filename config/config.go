// Package config loads engine configuration from YAML files with sensible
// defaults for every field, so a missing or partial file still yields a
// runnable setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/researchmesh/guardrail"
)

// AgentConfig bounds a single agent's reasoning loop.
type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// MemoryConfig configures the persistent vector memory.
type MemoryConfig struct {
	CollectionName string `yaml:"collection_name"`
	PersistPath    string `yaml:"persist_path"`
}

// SafetyConfig configures the guardrail layer.
type SafetyConfig struct {
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	MaxTokens          int      `yaml:"max_tokens"`
	BlockedTerms       []string `yaml:"blocked_terms"`
	MinConfidence      float64  `yaml:"min_confidence"`
}

// OutputConfig configures report artifact storage.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the root configuration document.
type Config struct {
	ResearchAgent AgentConfig  `yaml:"research_agent"`
	SummaryAgent  AgentConfig  `yaml:"summary_agent"`
	Memory        MemoryConfig `yaml:"memory"`
	Safety        SafetyConfig `yaml:"safety"`
	Output        OutputConfig `yaml:"output"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		ResearchAgent: AgentConfig{MaxIterations: 10},
		SummaryAgent:  AgentConfig{MaxIterations: 5},
		Memory: MemoryConfig{
			CollectionName: "agent_memory",
			PersistPath:    "./data/memory",
		},
		Safety: SafetyConfig{
			RateLimitPerMinute: guardrail.DefaultRateLimit,
			MaxTokens:          guardrail.DefaultMaxTokens,
			BlockedTerms:       guardrail.DefaultBlockedTerms,
			MinConfidence:      guardrail.DefaultMinConfidence,
		},
		Output: OutputConfig{Dir: "./data/research"},
	}
}

// Load reads a YAML config file, applying defaults for absent fields. A
// missing file is not an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ResearchAgent.MaxIterations <= 0 {
		return fmt.Errorf("research_agent.max_iterations must be positive")
	}
	if c.SummaryAgent.MaxIterations <= 0 {
		return fmt.Errorf("summary_agent.max_iterations must be positive")
	}
	if c.Safety.RateLimitPerMinute <= 0 {
		return fmt.Errorf("safety.rate_limit_per_minute must be positive")
	}
	if c.Safety.MinConfidence < 0 || c.Safety.MinConfidence > 1 {
		return fmt.Errorf("safety.min_confidence must be within [0,1]")
	}
	return nil
}
