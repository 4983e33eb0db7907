package postgres

import (
	"context"
	"time"

	"sheetimport/domain/core"
	"sheetimport/domain/task"
	"sheetimport/internal/errors"
	"sheetimport/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// taskRow mirrors one row of the tasks table
type taskRow struct {
	ID             string         `db:"id"`
	ProjectID      string         `db:"project_id"`
	SourceRow      int            `db:"source_row"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Status         string         `db:"status"`
	Priority       string         `db:"priority"`
	Progress       int            `db:"progress"`
	StartDate      *time.Time     `db:"start_date"`
	DueDate        *time.Time     `db:"due_date"`
	EstimatedHours *float64       `db:"estimated_hours"`
	ActualHours    *float64       `db:"actual_hours"`
	AssigneeID     *string        `db:"assignee_id"`
	AssigneeEmail  *string        `db:"assignee_email"`
	AssigneeText   string         `db:"assignee_text"`
	Tags           pq.StringArray `db:"tags"`
	Color          *string        `db:"color"`
	CreatedAt      time.Time      `db:"created_at"`
}

func newTaskRow(id core.TaskID, projectID string, t task.ImportedTask, now time.Time) taskRow {
	row := taskRow{
		ID:             id.String(),
		ProjectID:      projectID,
		SourceRow:      t.RowNumber,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Progress:       t.Progress,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		AssigneeText:   t.AssignedDisplayText,
		Tags:           pq.StringArray(t.Tags),
		CreatedAt:      now,
	}
	if t.StartDate != nil {
		d := t.StartDate.Time()
		row.StartDate = &d
	}
	if t.DueDate != nil {
		d := t.DueDate.Time()
		row.DueDate = &d
	}
	if t.AssignedPersonID != "" {
		s := t.AssignedPersonID.String()
		row.AssigneeID = &s
	}
	if t.AssignedEmail != "" {
		row.AssigneeEmail = &t.AssignedEmail
	}
	if t.Color != "" {
		row.Color = &t.Color
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}
	return row
}

// TaskRepository stores imported tasks in PostgreSQL
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new PostgreSQL task repository
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ForProject binds the repository to one target project
func (r *TaskRepository) ForProject(projectID string) ports.TaskCreator {
	return ports.TaskCreatorFunc(func(ctx context.Context, t task.ImportedTask) (core.TaskID, error) {
		return r.Create(ctx, projectID, t)
	})
}

// Create inserts one task and returns its id
func (r *TaskRepository) Create(ctx context.Context, projectID string, t task.ImportedTask) (core.TaskID, error) {
	id := core.NewTaskID()
	row := newTaskRow(id, projectID, t, time.Now().UTC())

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tasks (id, project_id, source_row, title, description, status, priority, progress,
			start_date, due_date, estimated_hours, actual_hours,
			assignee_id, assignee_email, assignee_text, tags, color, created_at)
		VALUES (:id, :project_id, :source_row, :title, :description, :status, :priority, :progress,
			:start_date, :due_date, :estimated_hours, :actual_hours,
			:assignee_id, :assignee_email, :assignee_text, :tags, :color, :created_at)
	`, row)
	if err != nil {
		return "", errors.DatabaseError("failed to insert task", err)
	}
	return id, nil
}

// CountByProject returns the number of tasks stored for a project
func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, errors.DatabaseError("failed to count tasks", err)
	}
	return n, nil
}
