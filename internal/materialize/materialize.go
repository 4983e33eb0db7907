// Package materialize turns mapped grid rows into imported tasks.
package materialize

import (
	"strings"

	"sheetimport/domain/core"
	"sheetimport/domain/grid"
	"sheetimport/domain/task"
	"sheetimport/internal/normalize"
)

// AssigneeResolver finds the collaborator an assignee cell refers to
type AssigneeResolver interface {
	Resolve(text string) (task.Collaborator, bool)
}

// Result is the outcome of materializing a grid
type Result struct {
	Tasks []task.ImportedTask `json:"tasks"`
	// SkippedRows are the 1-based data rows dropped for an empty title
	SkippedRows []int `json:"skipped_rows"`
	// Unresolved counts tasks whose assignee text matched nobody
	Unresolved int `json:"unresolved_assignees"`
}

// Skipped returns the number of dropped rows
func (r *Result) Skipped() int {
	return len(r.SkippedRows)
}

// Materialize builds one task per row with a non-empty title. resolver may
// be nil, in which case assignee text is kept verbatim and never resolved.
func Materialize(g *grid.RawGrid, m task.ColumnMapping, resolver AssigneeResolver) (*Result, error) {
	titleCol, ok := m.Column(task.FieldTitle)
	if !ok || titleCol < 0 || titleCol >= g.Width() {
		return nil, core.ErrTitleNotMapped
	}

	res := &Result{Tasks: make([]task.ImportedTask, 0, len(g.Rows))}
	for i, row := range g.Rows {
		cell := func(f task.FieldKey) string {
			col, ok := m.Column(f)
			if !ok || col < 0 || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}

		title := cell(task.FieldTitle)
		if title == "" {
			res.SkippedRows = append(res.SkippedRows, i+1)
			continue
		}

		t := task.ImportedTask{
			RowNumber:      i + 1,
			Title:          title,
			Description:    cell(task.FieldDescription),
			Status:         normalize.Status(cell(task.FieldStatus)),
			Priority:       normalize.Priority(cell(task.FieldPriority)),
			Progress:       normalize.Progress(cell(task.FieldProgress)),
			StartDate:      normalize.Date(cell(task.FieldStartDate)),
			DueDate:        normalize.Date(cell(task.FieldDueDate)),
			EstimatedHours: normalize.Hours(cell(task.FieldEstimatedHours)),
			ActualHours:    normalize.Hours(cell(task.FieldActualHours)),
			Tags:           normalize.Tags(cell(task.FieldTags)),
			Color:          normalize.Color(cell(task.FieldColor)),
		}

		if assignee := cell(task.FieldAssignedTo); assignee != "" {
			t.AssignedDisplayText = assignee
			if resolver != nil {
				if c, ok := resolver.Resolve(assignee); ok {
					t.AssignedPersonID = c.PersonID
					t.AssignedEmail = c.Email
					t.AssignedName = c.DisplayName
				}
			}
			if !t.IsAssigned() {
				res.Unresolved++
			}
		}

		res.Tasks = append(res.Tasks, t)
	}

	if len(res.Tasks) == 0 {
		return nil, core.ErrNoValidRows
	}
	return res, nil
}
