// Package config defines gozen's configuration model and loading rules.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Memory    MemoryConfig    `yaml:"memory"`
	Tools     ToolsConfig     `yaml:"tools"`
	Diff      DiffConfig      `yaml:"diff"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ModelConfig configures the model backend.
type ModelConfig struct {
	// Provider selects the backend: "gemini" or "ollama".
	Provider string `yaml:"provider"`
	// Name is the model identifier, e.g. "gemini-2.5-flash".
	Name string `yaml:"name"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
	// Host is the server address for the ollama provider.
	Host string `yaml:"host"`
	// MaxIterations bounds tool-call rounds within a single turn.
	MaxIterations int `yaml:"max_iterations"`
	// Temperature passed to the backend. Negative means backend default.
	Temperature float64 `yaml:"temperature"`
}

// MemoryConfig configures conversation memory.
type MemoryConfig struct {
	// Limit is the maximum number of retained messages.
	Limit int `yaml:"limit"`
}

// ToolsConfig configures tool execution.
type ToolsConfig struct {
	// ShellTimeout bounds run_shell and run_tests commands.
	ShellTimeout time.Duration `yaml:"shell_timeout"`
	// WebTimeout bounds web_fetch and web_search requests.
	WebTimeout time.Duration `yaml:"web_timeout"`
	// MaxOutputChars truncates tool output echoed back to the model.
	MaxOutputChars int `yaml:"max_output_chars"`
}

// DiffConfig configures change staging.
type DiffConfig struct {
	// AutoAccept applies build-plan changes directly instead of staging.
	AutoAccept bool `yaml:"auto_accept"`
	// ContextLines controls unified diff context in previews.
	ContextLines int `yaml:"context_lines"`
}

// WorkspaceConfig configures workspace scanning.
type WorkspaceConfig struct {
	// Root is the workspace directory. Empty means current directory.
	Root string `yaml:"root"`
	// IgnoreDirs are directory names skipped during scans.
	IgnoreDirs []string `yaml:"ignore_dirs"`
	// MaxScanFiles caps the number of files listed in a scan.
	MaxScanFiles int `yaml:"max_scan_files"`
	// Watch enables filesystem watching to invalidate stale scans.
	Watch bool `yaml:"watch"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File enables logging to gozen.log in the config directory.
	File bool `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:      "gemini",
			Name:          "gemini-2.5-flash",
			APIKeyEnv:     "GEMINI_API_KEY",
			Host:          "http://localhost:11434",
			MaxIterations: 24,
			Temperature:   -1,
		},
		Memory: MemoryConfig{
			Limit: 60,
		},
		Tools: ToolsConfig{
			ShellTimeout:   2 * time.Minute,
			WebTimeout:     30 * time.Second,
			MaxOutputChars: 16000,
		},
		Diff: DiffConfig{
			AutoAccept:   false,
			ContextLines: 3,
		},
		Workspace: WorkspaceConfig{
			IgnoreDirs: []string{
				".git", "node_modules", "__pycache__", ".venv", "venv",
				"dist", "build", "target", ".idea", ".vscode",
			},
			MaxScanFiles: 2000,
			Watch:        true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if c.Model.MaxIterations < 1 {
		return fmt.Errorf("model max_iterations must be at least 1, got %d", c.Model.MaxIterations)
	}
	if c.Memory.Limit < 1 {
		return fmt.Errorf("memory limit must be at least 1, got %d", c.Memory.Limit)
	}
	if c.Tools.MaxOutputChars < 1 {
		return fmt.Errorf("tools max_output_chars must be at least 1, got %d", c.Tools.MaxOutputChars)
	}
	return nil
}
