package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specforge/internal/db"
	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
)

func stringPtr(s string) *string { return &s }
func intPtr(n int) *int          { return &n }

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func setupRepo(t *testing.T) *db.Repository {
	t.Helper()
	return db.NewRepository(setupDB(t))
}

// seedProject saves a two-task project named "Todo".
func seedProject(t *testing.T, repo plan.Repository) *plan.Project {
	t.Helper()
	p := &plan.Project{
		Name:            "Todo",
		Priority:        stringPtr("high"),
		SprintsQuantity: intPtr(2),
		Tasks: []plan.Task{
			{Name: "Schema", AssignedTo: stringPtr("ana"), Sprint: intPtr(1), Description: stringPtr("tables and indexes")},
			{Name: "API", Sprint: intPtr(2)},
		},
	}
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestValidateProjectID(t *testing.T) {
	id, err := ValidateProjectID("  01ABC  ")
	if err != nil {
		t.Fatalf("ValidateProjectID failed: %v", err)
	}
	if id != "01ABC" {
		t.Errorf("id = %q, want %q", id, "01ABC")
	}

	if _, err := ValidateProjectID("   "); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}
