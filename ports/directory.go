package ports

import (
	"context"

	"sheetimport/domain/task"
)

// DirectoryProvider supplies the owner and collaborators of a project
type DirectoryProvider interface {
	Directory(ctx context.Context, projectID string) (task.Directory, error)
}
