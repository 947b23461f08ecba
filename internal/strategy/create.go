package strategy

import (
	"context"
	"strings"

	"github.com/hpungsan/specforge/internal/db"
	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
	"github.com/hpungsan/specforge/internal/prompts"
)

// Create generates one or more new projects from free text.
type Create struct {
	base
}

// NewCreate returns the create strategy.
func NewCreate(deps Deps) *Create {
	return &Create{base{name: NameCreate, deps: deps.withDefaults()}}
}

// Validate requires non-blank user input.
func (s *Create) Validate(sc Context) error {
	if strings.TrimSpace(sc.UserInput) == "" {
		return errors.NewValidation("user input is required")
	}
	return nil
}

// Execute generates, normalizes and persists every project in one transaction.
func (s *Create) Execute(ctx context.Context, sc Context) (res *Result, err error) {
	if err := s.Validate(sc); err != nil {
		return nil, err
	}
	defer func() { s.logResult(res, err) }()

	v, err := s.generate(ctx, prompts.Data{UserInput: sc.UserInput})
	if err != nil {
		return nil, err
	}

	spec, err := plan.Normalize(v, s.normalizeOptions())
	if err != nil {
		return nil, err
	}

	projects, err := db.Persist(ctx, s.deps.Repo, spec)
	if err != nil {
		return nil, err
	}

	added := 0
	for _, p := range projects {
		added += len(p.Tasks)
	}

	return &Result{
		Action:   ActionCreated,
		Projects: projects,
		Metadata: plan.Metadata{TasksAdded: added, FieldsUpdated: []string{}},
	}, nil
}
