package ports

import (
	"context"

	"sheetimport/domain/task"
)

// Notifier delivers one consolidated notification to one recipient
type Notifier interface {
	Notify(ctx context.Context, group task.NotificationGroup) error
}
