package strategy

import (
	"context"

	"github.com/hpungsan/specforge/internal/plan"
	"github.com/hpungsan/specforge/internal/prompts"
)

// Optimize replaces the task set of an existing project with a generated one.
// The delete and the insert share one transaction, so a failure leaves the
// stored tasks untouched.
type Optimize struct {
	base
}

// NewOptimize returns the optimize strategy.
func NewOptimize(deps Deps) *Optimize {
	return &Optimize{base{name: NameOptimize, deps: deps.withDefaults()}}
}

// Validate requires a saved existing project.
func (s *Optimize) Validate(sc Context) error {
	return requireProject(sc)
}

// Execute removes all current tasks, applies changed scalars and saves the
// new task set inside one transaction.
func (s *Optimize) Execute(ctx context.Context, sc Context) (res *Result, err error) {
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
	removed := len(project.Tasks)
	var fields []string

	err = s.deps.Repo.Transaction(ctx, func(tx plan.Repository) error {
		if err := tx.RemoveAll(ctx, project.Tasks); err != nil {
			return err
		}
		fields = applyScalars(project, payload)
		project.Tasks = newTasks(normalized)
		return tx.Save(ctx, project)
	})
	if err != nil {
		*project = *snapshot
		return nil, err
	}

	return &Result{
		Action:   ActionOptimized,
		Projects: []*plan.Project{project},
		Metadata: plan.Metadata{
			TasksAdded:    len(normalized),
			TasksRemoved:  removed,
			FieldsUpdated: fields,
		},
	}, nil
}
