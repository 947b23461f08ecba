package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
	"github.com/hpungsan/specforge/internal/strategy"
)

// PlanInput contains parameters for the Plan operation.
type PlanInput struct {
	Strategy  string // create, predict or optimize
	UserInput string // create only
	ProjectID string // predict and optimize only
}

// Plan resolves the strategy, loads the target project when the strategy
// needs one, and runs it.
func Plan(ctx context.Context, factory *strategy.Factory, repo plan.Repository, input PlanInput) (*strategy.Result, error) {
	s, err := factory.Get(input.Strategy)
	if err != nil {
		return nil, err
	}

	sc := strategy.Context{UserInput: input.UserInput}

	if s.Name() == strategy.NameCreate {
		if strings.TrimSpace(input.ProjectID) != "" {
			return nil, errors.NewInvalidRequest("project id is not accepted by create")
		}
	} else {
		project, err := Fetch(ctx, repo, FetchInput{ID: input.ProjectID})
		if err != nil {
			return nil, err
		}
		sc.ExistingProject = project
	}

	return s.Execute(ctx, sc)
}
