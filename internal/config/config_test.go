package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRepoConfig(t *testing.T, root, body string) string {
	t.Helper()
	dir := filepath.Join(root, ".specforge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DescriptionMaxChars != def.DescriptionMaxChars {
		t.Fatalf("DescriptionMaxChars = %d, want %d", cfg.DescriptionMaxChars, def.DescriptionMaxChars)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("Provider = %q, want %q", cfg.Provider, ProviderOpenAI)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"description_max_chars": 500, "provider": "gemini", "model": "gemini-2.5-flash", "api_key_env": "GEMINI_API_KEY"}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DescriptionMaxChars != 500 {
		t.Fatalf("DescriptionMaxChars = %d, want %d", cfg.DescriptionMaxChars, 500)
	}
	if cfg.Provider != ProviderGemini || cfg.Model != "gemini-2.5-flash" || cfg.APIKeyEnv != "GEMINI_API_KEY" {
		t.Fatalf("provider settings = %q/%q/%q", cfg.Provider, cfg.Model, cfg.APIKeyEnv)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["plan_optimize", "project_export"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "plan_optimize" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "plan_optimize")
	}
	if cfg.DisabledTools[1] != "project_export" {
		t.Errorf("DisabledTools[1] = %q, want %q", cfg.DisabledTools[1], "project_export")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"description_max_chars": 3000, "model": "global-model", "disabled_tools": ["plan_optimize"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	writeRepoConfig(t, repoRoot, `{"description_max_chars": 2000, "disabled_tools": ["project_export"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	// Repo overrides scalar
	if cfg.DescriptionMaxChars != 2000 {
		t.Errorf("DescriptionMaxChars = %d, want 2000 (repo override)", cfg.DescriptionMaxChars)
	}
	// Global survives where repo is silent
	if cfg.Model != "global-model" {
		t.Errorf("Model = %q, want global-model", cfg.Model)
	}
	// Arrays merged
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.DescriptionMaxChars != 4000 {
		t.Errorf("DescriptionMaxChars = %d, want 4000", cfg.DescriptionMaxChars)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeRepoConfig(t, tmpDir, `{"log_level": "debug"}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{DescriptionMaxChars: 4000, DBMaxOpenConns: 5, Provider: ProviderOpenAI}
	overlay := &Config{DescriptionMaxChars: 1000, Provider: "  "}

	result := Merge(base, overlay)

	if result.DescriptionMaxChars != 1000 {
		t.Errorf("DescriptionMaxChars = %d, want 1000 (overlay)", result.DescriptionMaxChars)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want base value for blank overlay", result.Provider)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{AllowUnsafePaths: true}, &Config{AllowUnsafePaths: false})
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/a", " /b "}}
	overlay := &Config{AllowedPaths: []string{"/b", "/c", ""}}

	result := Merge(base, overlay)

	want := []string{"/a", "/b", "/c"}
	if len(result.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", result.AllowedPaths, want)
	}
	for i := range want {
		if result.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, result.AllowedPaths[i], want[i])
		}
	}
}

func TestFindRepoConfig_InCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeRepoConfig(t, tmpDir, `{}`)

	if found := FindRepoConfig(tmpDir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}
