package ops

import (
	"context"
)

// ProjectDeleter removes a project and its tasks.
type ProjectDeleter interface {
	DeleteProject(ctx context.Context, id string) error
}

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete permanently removes a project; its tasks are removed with it.
func Delete(ctx context.Context, repo ProjectDeleter, input DeleteInput) (*DeleteOutput, error) {
	id, err := ValidateProjectID(input.ID)
	if err != nil {
		return nil, err
	}

	if err := repo.DeleteProject(ctx, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}
