package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Supported generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds application configuration.
type Config struct {
	// Provider selects the generation backend: "openai" or "gemini".
	Provider string `json:"provider"`

	// Model is the provider model name.
	Model string `json:"model"`

	// APIKeyEnv names the environment variable holding the provider API key.
	APIKeyEnv string `json:"api_key_env"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible servers only).
	BaseURL string `json:"base_url,omitempty"`

	// DescriptionMaxChars caps normalized task descriptions.
	DescriptionMaxChars int `json:"description_max_chars"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level"`

	// PromptsFile optionally replaces the built-in prompt templates with a YAML file.
	PromptsFile string `json:"prompts_file,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.specforge/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		Model:               "gpt-4o-mini",
		APIKeyEnv:           "OPENAI_API_KEY",
		DescriptionMaxChars: 4000,
		LogLevel:            "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.specforge.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.specforge) and repo (.specforge) directories.
// Repo config is found by walking upward from startDir to find the nearest .specforge/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .specforge/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".specforge", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Provider:            mergeString(base.Provider, overlay.Provider),
		Model:               mergeString(base.Model, overlay.Model),
		APIKeyEnv:           mergeString(base.APIKeyEnv, overlay.APIKeyEnv),
		BaseURL:             mergeString(base.BaseURL, overlay.BaseURL),
		LogLevel:            mergeString(base.LogLevel, overlay.LogLevel),
		PromptsFile:         mergeString(base.PromptsFile, overlay.PromptsFile),
		DescriptionMaxChars: mergeInt(base.DescriptionMaxChars, overlay.DescriptionMaxChars),
		DBMaxOpenConns:      mergeInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns:      mergeInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func mergeString(base, overlay string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

func mergeInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
