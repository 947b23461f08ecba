package plan

import (
	"fmt"

	"github.com/hpungsan/specforge/internal/errors"
)

// MaxDescriptionChars is the default hard cap on task description length.
const MaxDescriptionChars = 4000

// Field aliases accepted from generated text. The first non-null alias wins.
var (
	ProjectNameAliases     = []string{"name", "projectName", "project_name"}
	PriorityAliases        = []string{"priority"}
	BackTechAliases        = []string{"backtech", "backTech", "back_tech"}
	FrontTechAliases       = []string{"fronttech", "frontTech", "front_tech"}
	CloudTechAliases       = []string{"cloudTech", "cloudtech", "cloud_tech"}
	SprintsQuantityAliases = []string{"sprintsQuantity", "sprints_quantity"}
	EndDateAliases         = []string{"endDate", "end_date"}
	TasksAliases           = []string{"tasks", "Tasks"}
	TaskNameAliases        = []string{"name", "taskName", "title"}
	AssignedToAliases      = []string{"assignedTo", "assigned_to"}
	SprintAliases          = []string{"sprint"}
)

// NormalizeOptions tunes normalization.
type NormalizeOptions struct {
	// DescriptionMaxChars caps task descriptions (runes). 0 means MaxDescriptionChars.
	DescriptionMaxChars int
}

func (o NormalizeOptions) maxChars() int {
	if o.DescriptionMaxChars <= 0 {
		return MaxDescriptionChars
	}
	return o.DescriptionMaxChars
}

// Normalize maps a parsed value tree onto the canonical project model.
//
// Accepted shapes are {projects:[...]}, {project:{...}} and a bare project
// object. Every project and task is normalized before validation runs; the
// first missing name aborts the whole batch.
func Normalize(v any, opts NormalizeOptions) (*Spec, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, errors.NewValidation("expected a JSON object at the top level")
	}

	spec := &Spec{}
	switch {
	case root["projects"] != nil:
		list, ok := root["projects"].([]any)
		if !ok {
			return nil, errors.NewValidation(`"projects" must be an array`)
		}
		for i, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, errors.NewValidation(fmt.Sprintf("project %d: expected an object", i+1))
			}
			spec.Projects = append(spec.Projects, NormalizeProject(obj, opts))
		}
	case root["project"] != nil:
		obj, ok := root["project"].(map[string]any)
		if !ok {
			return nil, errors.NewValidation(`"project" must be an object`)
		}
		spec.IsSingle = true
		spec.Projects = []NormalizedProject{NormalizeProject(obj, opts)}
	default:
		spec.IsSingle = true
		spec.Projects = []NormalizedProject{NormalizeProject(root, opts)}
	}

	if len(spec.Projects) == 0 {
		return nil, errors.NewValidation(`"projects" must contain at least one project`)
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// NormalizeProject resolves alias fields of a single project object.
func NormalizeProject(m map[string]any, opts NormalizeOptions) NormalizedProject {
	p := NormalizedProject{
		Priority:        CoerceString(Pick(m, PriorityAliases...)),
		BackTech:        CoerceString(Pick(m, BackTechAliases...)),
		FrontTech:       CoerceString(Pick(m, FrontTechAliases...)),
		CloudTech:       CoerceString(Pick(m, CloudTechAliases...)),
		SprintsQuantity: CoerceInt(Pick(m, SprintsQuantityAliases...)),
		EndDate:         CoerceString(Pick(m, EndDateAliases...)),
		Tasks:           NormalizeTasks(Pick(m, TasksAliases...), opts),
	}
	if name := CoerceString(Pick(m, ProjectNameAliases...)); name != nil {
		p.Name = *name
	}
	return p
}

// NormalizeTasks resolves a tasks array. Anything other than an array yields
// no tasks; non-object entries become nameless tasks so validation reports them.
func NormalizeTasks(v any, opts NormalizeOptions) []NormalizedTask {
	list, ok := v.([]any)
	if !ok {
		return []NormalizedTask{}
	}
	tasks := make([]NormalizedTask, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		tasks = append(tasks, NormalizeTask(obj, opts))
	}
	return tasks
}

// NormalizeTask resolves alias fields of a single task object.
func NormalizeTask(m map[string]any, opts NormalizeOptions) NormalizedTask {
	if m == nil {
		return NormalizedTask{}
	}
	t := NormalizedTask{
		Description: NormalizeDescription(m["description"], opts.maxChars()),
		AssignedTo:  CoerceString(Pick(m, AssignedToAliases...)),
		Sprint:      CoerceInt(Pick(m, SprintAliases...)),
	}
	if name := CoerceString(Pick(m, TaskNameAliases...)); name != nil {
		t.Name = *name
	}
	return t
}

// Validate checks that every project and task has a name. Indexes in the
// error are 1-based.
func Validate(spec *Spec) error {
	for i, p := range spec.Projects {
		if p.Name == "" {
			return errors.NewValidationWithDetails(
				fmt.Sprintf("project %d: name is required", i+1),
				map[string]any{"project_index": i + 1, "field": "name"},
			)
		}
		for j, t := range p.Tasks {
			if t.Name == "" {
				return errors.NewValidationWithDetails(
					fmt.Sprintf("project %d task %d: name is required", i+1, j+1),
					map[string]any{"project_index": i + 1, "task_index": j + 1, "field": "name"},
				)
			}
		}
	}
	return nil
}

// ValidateTasks checks that every task in a partial-update payload has a name.
func ValidateTasks(tasks []NormalizedTask) error {
	for j, t := range tasks {
		if t.Name == "" {
			return errors.NewValidationWithDetails(
				fmt.Sprintf("task %d: name is required", j+1),
				map[string]any{"task_index": j + 1, "field": "name"},
			)
		}
	}
	return nil
}
