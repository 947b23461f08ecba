package ops

import (
	"context"

	"github.com/hpungsan/specforge/internal/plan"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []plan.ProjectSummary `json:"items"`
	Pagination Pagination            `json:"pagination"`
	Sort       string                `json:"sort"`
}

// List retrieves project summaries with pagination.
func List(ctx context.Context, repo plan.Repository, input ListInput) (*ListOutput, error) {
	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	summaries, total, err := repo.ListProjects(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []plan.ProjectSummary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
