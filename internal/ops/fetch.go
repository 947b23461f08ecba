package ops

import (
	"context"

	"github.com/hpungsan/specforge/internal/plan"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// Fetch retrieves a project and its tasks by ID.
func Fetch(ctx context.Context, repo plan.Repository, input FetchInput) (*plan.Project, error) {
	id, err := ValidateProjectID(input.ID)
	if err != nil {
		return nil, err
	}
	return repo.GetProject(ctx, id)
}
