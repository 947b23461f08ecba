package db

import (
	"context"

	"github.com/hpungsan/specforge/internal/plan"
)

// Persist stores every project and task of a normalized spec in one
// transaction and returns the saved projects with their generated IDs.
// Either all rows are written or none are.
func Persist(ctx context.Context, repo plan.Repository, spec *plan.Spec) ([]*plan.Project, error) {
	projects := make([]*plan.Project, 0, len(spec.Projects))

	err := repo.Transaction(ctx, func(tx plan.Repository) error {
		for _, np := range spec.Projects {
			p := plan.NewProject(np)
			p.SprintsQuantity = recoerce(p.SprintsQuantity)
			for i := range p.Tasks {
				p.Tasks[i].Sprint = recoerce(p.Tasks[i].Sprint)
			}
			if err := tx.Save(ctx, p); err != nil {
				return err
			}
			projects = append(projects, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func recoerce(n *int) *int {
	if n == nil {
		return nil
	}
	return plan.CoerceInt(*n)
}
