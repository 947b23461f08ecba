package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
)

// deleteChunkSize bounds the number of bind variables in one DELETE ... IN.
const deleteChunkSize = 500

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewID returns a new ULID string.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// upsertProject inserts the project row or updates it in place.
func upsertProject(ctx context.Context, q querier, p *plan.Project) error {
	query := `
		INSERT INTO projects (
			id, name, priority, backtech, fronttech, cloud_tech,
			sprints_quantity, end_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			priority = excluded.priority,
			backtech = excluded.backtech,
			fronttech = excluded.fronttech,
			cloud_tech = excluded.cloud_tech,
			sprints_quantity = excluded.sprints_quantity,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at
	`

	_, err := q.ExecContext(ctx, query,
		p.ID, p.Name, toNullString(p.Priority), toNullString(p.BackTech),
		toNullString(p.FrontTech), toNullString(p.CloudTech),
		toNullInt(p.SprintsQuantity), toNullString(p.EndDate),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// upsertTask inserts the task row or updates it in place.
func upsertTask(ctx context.Context, q querier, t *plan.Task) error {
	query := `
		INSERT INTO tasks (
			id, project_id, name, description, assigned_to, sprint,
			position, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			description = excluded.description,
			assigned_to = excluded.assigned_to,
			sprint = excluded.sprint,
			position = excluded.position
	`

	_, err := q.ExecContext(ctx, query,
		t.ID, t.ProjectID, t.Name, toNullString(t.Description),
		toNullString(t.AssignedTo), toNullInt(t.Sprint),
		t.Position, t.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// getProject loads a project row and its tasks ordered by position.
func getProject(ctx context.Context, q querier, id string) (*plan.Project, error) {
	query := `
		SELECT id, name, priority, backtech, fronttech, cloud_tech,
			sprints_quantity, end_date, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	p, err := scanProject(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tasks, err := listTasks(ctx, q, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

// listTasks returns a project's tasks ordered by position.
func listTasks(ctx context.Context, q querier, projectID string) ([]plan.Task, error) {
	query := `
		SELECT id, project_id, name, description, assigned_to, sprint,
			position, created_at
		FROM tasks
		WHERE project_id = ?
		ORDER BY position ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	tasks := []plan.Task{}
	for rows.Next() {
		var (
			t           plan.Task
			description sql.NullString
			assignedTo  sql.NullString
			sprint      sql.NullInt64
		)
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Name, &description, &assignedTo, &sprint,
			&t.Position, &t.CreatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		t.Description = fromNullString(description)
		t.AssignedTo = fromNullString(assignedTo)
		t.Sprint = fromNullInt(sprint)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tasks, nil
}

// listProjects returns project summaries, most recently updated first.
func listProjects(ctx context.Context, q querier, limit, offset int) ([]plan.ProjectSummary, int, error) {
	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT p.id, p.name, p.priority, p.end_date, p.updated_at,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id)
		FROM projects p
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []plan.ProjectSummary{}
	for rows.Next() {
		var (
			s        plan.ProjectSummary
			priority sql.NullString
			endDate  sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &priority, &endDate, &s.UpdatedAt, &s.TaskCount); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.Priority = fromNullString(priority)
		s.EndDate = fromNullString(endDate)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// deleteTasks removes tasks by ID in chunks.
func deleteTasks(ctx context.Context, q querier, ids []string) error {
	for start := 0; start < len(ids); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		if _, err := q.ExecContext(ctx, "DELETE FROM tasks WHERE id IN ("+placeholders+")", args...); err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}

// deleteProject removes a project; its tasks follow via ON DELETE CASCADE.
func deleteProject(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanProject scans a single row into a Project struct (tasks not loaded).
func scanProject(row *sql.Row) (*plan.Project, error) {
	var (
		p               plan.Project
		priority        sql.NullString
		backTech        sql.NullString
		frontTech       sql.NullString
		cloudTech       sql.NullString
		sprintsQuantity sql.NullInt64
		endDate         sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.Name, &priority, &backTech, &frontTech, &cloudTech,
		&sprintsQuantity, &endDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Priority = fromNullString(priority)
	p.BackTech = fromNullString(backTech)
	p.FrontTech = fromNullString(frontTech)
	p.CloudTech = fromNullString(cloudTech)
	p.SprintsQuantity = fromNullInt(sprintsQuantity)
	p.EndDate = fromNullString(endDate)

	return &p, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func fromNullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
