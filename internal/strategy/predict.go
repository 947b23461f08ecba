package strategy

import (
	"context"

	"github.com/hpungsan/specforge/internal/plan"
	"github.com/hpungsan/specforge/internal/prompts"
)

// Predict appends generated tasks to an existing project. Existing tasks are
// never removed or altered.
type Predict struct {
	base
}

// NewPredict returns the predict strategy.
func NewPredict(deps Deps) *Predict {
	return &Predict{base{name: NamePredict, deps: deps.withDefaults()}}
}

// Validate requires a saved existing project.
func (s *Predict) Validate(sc Context) error {
	return requireProject(sc)
}

// Execute appends the response tasks and applies changed scalars in one save.
func (s *Predict) Execute(ctx context.Context, sc Context) (res *Result, err error) {
	if err := s.Validate(sc); err != nil {
		return nil, err
	}
	defer func() { s.logResult(res, err) }()

	project := sc.ExistingProject

	v, err := s.generate(ctx, prompts.Data{Project: project})
	if err != nil {
		return nil, err
	}
	payload, err := updatePayload(v)
	if err != nil {
		return nil, err
	}

	normalized := plan.NormalizeTasks(plan.Pick(payload, plan.TasksAliases...), s.normalizeOptions())
	if err := plan.ValidateTasks(normalized); err != nil {
		return nil, err
	}

	snapshot := project.Clone()
	fields := applyScalars(project, payload)
	project.Tasks = append(project.Tasks, newTasks(normalized)...)

	err = s.deps.Repo.Transaction(ctx, func(tx plan.Repository) error {
		return tx.Save(ctx, project)
	})
	if err != nil {
		*project = *snapshot
		return nil, err
	}

	return &Result{
		Action:   ActionPredicted,
		Projects: []*plan.Project{project},
		Metadata: plan.Metadata{TasksAdded: len(normalized), FieldsUpdated: fields},
	}, nil
}
