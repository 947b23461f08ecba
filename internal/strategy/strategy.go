// Package strategy runs the three write strategies over generated plans:
// create, predict (merge-append) and optimize (atomic replace).
//
// Every strategy follows the same sequence: validate the input, render the
// prompt, call the generator once, repair and parse the response, then write
// through the repository. Validation failures surface before the generator
// is called, and a blank response aborts the run before anything is written.
package strategy

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/llm"
	"github.com/hpungsan/specforge/internal/plan"
	"github.com/hpungsan/specforge/internal/prompts"
	"github.com/hpungsan/specforge/internal/repair"
)

// Strategy names.
const (
	NameCreate   = "create"
	NamePredict  = "predict"
	NameOptimize = "optimize"
)

// Result actions.
const (
	ActionCreated   = "created"
	ActionPredicted = "predicted"
	ActionOptimized = "optimized"
)

// Context is the input to a strategy run.
type Context struct {
	// UserInput is the free-text request (create only).
	UserInput string

	// ExistingProject is the project to extend or rewrite, tasks loaded
	// (predict and optimize only). It is updated in place on success and
	// left unchanged on failure.
	ExistingProject *plan.Project
}

// Result is what a strategy persisted and what it changed.
type Result struct {
	Action   string          `json:"action"`
	Projects []*plan.Project `json:"projects"`
	Metadata plan.Metadata   `json:"metadata"`
}

// Strategy is one way of turning generated text into persisted projects.
type Strategy interface {
	Name() string
	Validate(sc Context) error
	Execute(ctx context.Context, sc Context) (*Result, error)
}

// Deps are the collaborators shared by all strategies.
type Deps struct {
	Repo      plan.Repository
	Generator llm.Generator

	// Prompts defaults to the built-in templates.
	Prompts *prompts.Set

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// DescriptionMaxChars caps task descriptions; 0 means plan.MaxDescriptionChars.
	DescriptionMaxChars int
}

func (d Deps) withDefaults() Deps {
	if d.Prompts == nil {
		d.Prompts = prompts.MustDefault()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// base carries the steps every strategy shares.
type base struct {
	name string
	deps Deps
}

func (b *base) Name() string { return b.name }

func (b *base) normalizeOptions() plan.NormalizeOptions {
	return plan.NormalizeOptions{DescriptionMaxChars: b.deps.DescriptionMaxChars}
}

// generate renders the prompt, calls the generator once and returns the
// repaired, parsed response.
func (b *base) generate(ctx context.Context, data prompts.Data) (any, error) {
	prompt, err := b.deps.Prompts.Render(b.name, data)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	b.deps.Logger.Debug("calling generator",
		zap.String("strategy", b.name),
		zap.Int("prompt_chars", len(prompt)))

	text, err := b.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, errors.NewGenerationFailed(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewEmptyResponse(b.name)
	}

	return repair.Decode(text)
}

// logResult records the outcome of a run.
func (b *base) logResult(res *Result, err error) {
	if err != nil {
		b.deps.Logger.Warn("strategy failed",
			zap.String("strategy", b.name),
			zap.Error(err))
		return
	}
	b.deps.Logger.Info("strategy finished",
		zap.String("strategy", b.name),
		zap.String("action", res.Action),
		zap.Int("projects", len(res.Projects)),
		zap.Int("tasks_added", res.Metadata.TasksAdded),
		zap.Int("tasks_removed", res.Metadata.TasksRemoved),
		zap.Strings("fields_updated", res.Metadata.FieldsUpdated))
}

// requireProject validates predict and optimize input.
func requireProject(sc Context) error {
	if sc.ExistingProject == nil {
		return errors.NewValidation("an existing project is required")
	}
	if strings.TrimSpace(sc.ExistingProject.ID) == "" {
		return errors.NewValidation("the existing project has no id; save it first")
	}
	return nil
}

// updatePayload locates the partial-update object in a predict or optimize
// response. A response that wraps the project ({project:{...}} or
// {projects:[{...}]}) and has no top-level tasks is unwrapped.
func updatePayload(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.NewValidation("expected a JSON object at the top level")
	}
	if plan.Pick(m, plan.TasksAliases...) != nil {
		return m, nil
	}
	if inner, ok := m["project"].(map[string]any); ok {
		return inner, nil
	}
	if list, ok := m["projects"].([]any); ok && len(list) > 0 {
		if inner, ok := list[0].(map[string]any); ok {
			return inner, nil
		}
	}
	return m, nil
}

// applyScalars copies sprintsQuantity and endDate from the payload when they
// are present and differ from the stored values. It returns the names of the
// fields that changed.
func applyScalars(p *plan.Project, payload map[string]any) []string {
	fields := []string{}

	if sq := plan.CoerceInt(plan.Pick(payload, plan.SprintsQuantityAliases...)); sq != nil {
		if p.SprintsQuantity == nil || *p.SprintsQuantity != *sq {
			p.SprintsQuantity = sq
			fields = append(fields, "sprintsQuantity")
		}
	}

	if ed := plan.CoerceString(plan.Pick(payload, plan.EndDateAliases...)); ed != nil {
		if p.EndDate == nil || *p.EndDate != *ed {
			p.EndDate = ed
			fields = append(fields, "endDate")
		}
	}

	return fields
}

// newTasks builds unsaved tasks from a normalized list.
func newTasks(normalized []plan.NormalizedTask) []plan.Task {
	tasks := make([]plan.Task, 0, len(normalized))
	for _, nt := range normalized {
		tasks = append(tasks, plan.NewTask(nt))
	}
	return tasks
}
