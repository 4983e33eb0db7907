package ports

import (
	"context"

	"sheetimport/domain/core"
	"sheetimport/domain/task"
)

// TaskCreator persists one imported task in the target project. It is
// invoked once per task, in row order, during the commit stage.
type TaskCreator interface {
	CreateTask(ctx context.Context, t task.ImportedTask) (core.TaskID, error)
}

// TaskCreatorFunc adapts a function to TaskCreator
type TaskCreatorFunc func(ctx context.Context, t task.ImportedTask) (core.TaskID, error)

func (f TaskCreatorFunc) CreateTask(ctx context.Context, t task.ImportedTask) (core.TaskID, error) {
	return f(ctx, t)
}

// TaskStore hands out a TaskCreator bound to one target project
type TaskStore interface {
	ForProject(projectID string) TaskCreator
}
