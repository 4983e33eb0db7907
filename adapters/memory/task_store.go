// Package memory keeps imported tasks in process memory.
package memory

import (
	"context"
	"sync"

	"sheetimport/domain/core"
	"sheetimport/domain/task"
	"sheetimport/ports"
)

// StoredTask is a created task with its id
type StoredTask struct {
	ID core.TaskID
	task.ImportedTask
}

// TaskStore is an in-memory task store, used when no database is configured
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string][]StoredTask
}

// NewTaskStore creates an empty store
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string][]StoredTask)}
}

// ForProject binds the store to one target project
func (s *TaskStore) ForProject(projectID string) ports.TaskCreator {
	return ports.TaskCreatorFunc(func(ctx context.Context, t task.ImportedTask) (core.TaskID, error) {
		return s.Create(ctx, projectID, t)
	})
}

// Create appends a task to a project
func (s *TaskStore) Create(ctx context.Context, projectID string, t task.ImportedTask) (core.TaskID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := core.NewTaskID()
	t.Tags = append([]string(nil), t.Tags...)

	s.mu.Lock()
	s.tasks[projectID] = append(s.tasks[projectID], StoredTask{ID: id, ImportedTask: t})
	s.mu.Unlock()
	return id, nil
}

// Tasks returns the tasks of a project in creation order
func (s *TaskStore) Tasks(projectID string) []StoredTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredTask, len(s.tasks[projectID]))
	copy(out, s.tasks[projectID])
	return out
}
