package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string
	Format string // markdown (default), html or json
	Path   string // optional, default: ~/.specforge/exports/<name>-<timestamp>.<ext>
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	ProjectID  string `json:"project_id"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export renders a project and writes it to a file.
func Export(ctx context.Context, repo plan.Repository, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	format, err := ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}

	project, err := Fetch(ctx, repo, FetchInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	content, err := Render(project, format)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(project.Name, format, now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default) for security
	if err := ValidatePath(exportPath, format, cfg); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(exportPath, content); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     format,
		ProjectID:  project.ID,
		Bytes:      len(content),
		ExportedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes content to a temp file and renames it into place,
// preserving any existing file on failure.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(content); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely
	// instead of a non-atomic delete+rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath generates the default export path.
// Format: ~/.specforge/exports/<name>-<timestamp>.<ext>
func defaultExportPath(projectName, format string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s-%s%s", SanitizeForFilename(projectName), now.Format("2006-01-02T150405"), formatExtensions[format])
	return filepath.Join(dir, filename), nil
}
