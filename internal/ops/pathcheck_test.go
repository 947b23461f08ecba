package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../plan.md"},
		{"deep traversal", "../../etc/plan.md"},
		{"mid-path traversal", "/tmp/../etc/plan.md"},
		{"hidden in path", "/tmp/safe/../../../etc/shadow.md"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, FormatMarkdown, cfg)
			if err == nil {
				t.Error("expected error for path traversal, got nil")
			}
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionMatchesFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow any directory
	dir := t.TempDir()

	tests := []struct {
		path   string
		format string
		ok     bool
	}{
		{"plan.md", FormatMarkdown, true},
		{"plan.html", FormatHTML, true},
		{"plan.json", FormatJSON, true},
		{"plan", FormatMarkdown, false},
		{"plan.html", FormatMarkdown, false},
		{"plan.md", FormatJSON, false},
		{"plan.txt", FormatHTML, false},
	}

	for _, tc := range tests {
		err := ValidatePath(filepath.Join(dir, tc.path), tc.format, cfg)
		if tc.ok && err != nil {
			t.Errorf("%s as %s: unexpected error %v", tc.path, tc.format, err)
		}
		if !tc.ok && !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("%s as %s: expected ErrInvalidRequest, got %v", tc.path, tc.format, err)
		}
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()

	// Default config: only ~/.specforge/exports allowed
	err := ValidatePath(filepath.Join(t.TempDir(), "plan.md"), FormatMarkdown, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}

	exportsDir, err := DefaultExportsDir()
	if err != nil {
		t.Fatalf("DefaultExportsDir failed: %v", err)
	}
	if err := ValidatePath(filepath.Join(exportsDir, "plan.md"), FormatMarkdown, cfg); err != nil {
		t.Errorf("expected default exports dir to be allowed, got: %v", err)
	}

	// Subdirectories of an allowed directory are rejected
	err = ValidatePath(filepath.Join(exportsDir, "nested", "plan.md"), FormatMarkdown, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nested path, got: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	if err := ValidatePath(filepath.Join(tmpDir, "plan.json"), FormatJSON, cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}

	otherDir := t.TempDir()
	if err := ValidatePath(filepath.Join(otherDir, "plan.json"), FormatJSON, cfg); err == nil {
		t.Error("expected error for path outside AllowedPaths, got nil")
	}
}

func TestValidatePath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	targetFile := filepath.Join(tmpDir, "target.md")
	if err := os.WriteFile(targetFile, []byte("# x"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}
	symlink := filepath.Join(tmpDir, "link.md")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidatePath(symlink, FormatMarkdown, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlink, got: %v", err)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := map[string]string{
		"Todo App":        "todo-app",
		"../../etc":       "etc",
		"a/b\\c":          "a-b-c",
		"  ":              "unnamed",
		"x\x00y":          "xy",
		"Ünïcode  Plan ": "ünïcode-plan",
	}
	for in, want := range tests {
		if got := SanitizeForFilename(in); got != want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
