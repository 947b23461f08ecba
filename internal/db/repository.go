package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
)

// Repository is the SQLite implementation of plan.Repository.
// A Repository returned inside Transaction is bound to that transaction.
type Repository struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

var _ plan.Repository = (*Repository)(nil)

// NewRepository returns a repository over an initialized database.
func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database, q: database}
}

// GetProject loads a project with its tasks ordered by position.
func (r *Repository) GetProject(ctx context.Context, id string) (*plan.Project, error) {
	return getProject(ctx, r.q, id)
}

// ListProjects returns project summaries and the total project count.
func (r *Repository) ListProjects(ctx context.Context, limit, offset int) ([]plan.ProjectSummary, int, error) {
	return listProjects(ctx, r.q, limit, offset)
}

// Save upserts the project row and each task. New projects and tasks get a
// ULID; task positions are reassigned from slice order. Outside a
// transaction the writes still run atomically.
func (r *Repository) Save(ctx context.Context, p *plan.Project) error {
	if r.tx == nil {
		return r.Transaction(ctx, func(tx plan.Repository) error {
			return tx.Save(ctx, p)
		})
	}

	now := time.Now().Unix()
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := upsertProject(ctx, r.q, p); err != nil {
		return err
	}

	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.ID == "" {
			t.ID = NewID()
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = now
		}
		t.ProjectID = p.ID
		t.Position = i
		if err := upsertTask(ctx, r.q, t); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll deletes the given tasks. Tasks without an ID are skipped.
func (r *Repository) RemoveAll(ctx context.Context, tasks []plan.Task) error {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return deleteTasks(ctx, r.q, ids)
}

// DeleteProject removes a project and, through the foreign key cascade, its tasks.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	return deleteProject(ctx, r.q, id)
}

// Transaction runs fn against a repository bound to one transaction.
// It commits when fn returns nil and rolls back on error or panic. Calls on
// a repository that is already transactional reuse the open transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(plan.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Repository{db: r.db, q: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
