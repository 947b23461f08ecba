// Package plan holds the project/task domain model, both the canonical shape
// recovered from generated text and the persisted entities.
package plan

import "context"

// Spec is the canonical form of one or more project trees recovered from
// generated text.
type Spec struct {
	// IsSingle is true when the input described exactly one project
	// ({project:{...}} or a bare object) rather than a {projects:[...]} list.
	IsSingle bool
	Projects []NormalizedProject
}

// NormalizedProject is a project with alias fields resolved.
type NormalizedProject struct {
	Name            string
	Priority        *string
	BackTech        *string
	FrontTech       *string
	CloudTech       *string
	SprintsQuantity *int
	EndDate         *string
	Tasks           []NormalizedTask
}

// NormalizedTask is a task with alias fields resolved and its description cleaned.
type NormalizedTask struct {
	Name        string
	Description *string
	AssignedTo  *string
	Sprint      *int
}

// Project is a persisted project and its owned tasks.
type Project struct {
	// ID is a ULID assigned on first save
	ID string `json:"id"`

	Name            string  `json:"name"`
	Priority        *string `json:"priority"`
	BackTech        *string `json:"backtech"`
	FrontTech       *string `json:"fronttech"`
	CloudTech       *string `json:"cloud_tech"`
	SprintsQuantity *int    `json:"sprints_quantity"`
	EndDate         *string `json:"end_date"`

	// Tasks are owned by the project; deleting the project deletes them.
	Tasks []Task `json:"tasks"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Task is a persisted task belonging to exactly one project.
type Task struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	Sprint      *int    `json:"sprint"`

	// Position orders tasks within their project.
	Position  int   `json:"position"`
	CreatedAt int64 `json:"created_at"`
}

// ProjectSummary is the list view of a project.
type ProjectSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Priority  *string `json:"priority"`
	EndDate   *string `json:"end_date"`
	TaskCount int     `json:"task_count"`
	UpdatedAt int64   `json:"updated_at"`
}

// Metadata describes what a write strategy changed.
type Metadata struct {
	TasksAdded    int      `json:"tasks_added"`
	TasksRemoved  int      `json:"tasks_removed"`
	FieldsUpdated []string `json:"fields_updated"`
}

// Repository is the persistence contract used by the write strategies.
type Repository interface {
	// GetProject loads a project with its tasks ordered by position.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjects returns summaries ordered by most recently updated,
	// plus the total number of projects.
	ListProjects(ctx context.Context, limit, offset int) ([]ProjectSummary, int, error)

	// Save upserts the project and each of its tasks. Projects and tasks
	// without an ID are assigned one.
	Save(ctx context.Context, p *Project) error

	// RemoveAll deletes the given tasks by ID.
	RemoveAll(ctx context.Context, tasks []Task) error

	// Transaction runs fn against a transactional repository, committing
	// when fn returns nil and rolling back otherwise.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// Clone returns a deep copy of the project, tasks included.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Priority = cloneString(p.Priority)
	c.BackTech = cloneString(p.BackTech)
	c.FrontTech = cloneString(p.FrontTech)
	c.CloudTech = cloneString(p.CloudTech)
	c.EndDate = cloneString(p.EndDate)
	c.SprintsQuantity = cloneInt(p.SprintsQuantity)
	if p.Tasks != nil {
		c.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			t.Description = cloneString(t.Description)
			t.AssignedTo = cloneString(t.AssignedTo)
			t.Sprint = cloneInt(t.Sprint)
			c.Tasks[i] = t
		}
	}
	return &c
}

// NewProject builds an unsaved project from its normalized form.
func NewProject(np NormalizedProject) *Project {
	p := &Project{
		Name:            np.Name,
		Priority:        np.Priority,
		BackTech:        np.BackTech,
		FrontTech:       np.FrontTech,
		CloudTech:       np.CloudTech,
		SprintsQuantity: np.SprintsQuantity,
		EndDate:         np.EndDate,
		Tasks:           make([]Task, 0, len(np.Tasks)),
	}
	for _, nt := range np.Tasks {
		p.Tasks = append(p.Tasks, NewTask(nt))
	}
	return p
}

// NewTask builds an unsaved task from its normalized form.
func NewTask(nt NormalizedTask) Task {
	return Task{
		Name:        nt.Name,
		Description: nt.Description,
		AssignedTo:  nt.AssignedTo,
		Sprint:      nt.Sprint,
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
