package task

import (
	"encoding/json"
	"sort"

	"sheetimport/domain/core"
)

// FieldKey is a target task field a spreadsheet column can be mapped to
type FieldKey string

const (
	FieldTitle          FieldKey = "title"
	FieldDescription    FieldKey = "description"
	FieldStatus         FieldKey = "status"
	FieldPriority       FieldKey = "priority"
	FieldProgress       FieldKey = "progress"
	FieldStartDate      FieldKey = "start_date"
	FieldDueDate        FieldKey = "due_date"
	FieldEstimatedHours FieldKey = "estimated_hours"
	FieldActualHours    FieldKey = "actual_hours"
	FieldAssignedTo     FieldKey = "assigned_to"
	FieldTags           FieldKey = "tags"
	FieldColor          FieldKey = "color"
)

var allFields = []FieldKey{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPriority,
	FieldProgress,
	FieldStartDate,
	FieldDueDate,
	FieldEstimatedHours,
	FieldActualHours,
	FieldAssignedTo,
	FieldTags,
	FieldColor,
}

// AllFields returns every field in canonical order
func AllFields() []FieldKey {
	out := make([]FieldKey, len(allFields))
	copy(out, allFields)
	return out
}

// ParseFieldKey validates a field name
func ParseFieldKey(s string) (FieldKey, bool) {
	for _, f := range allFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Required reports whether the field must be mapped
func (f FieldKey) Required() bool {
	return f == FieldTitle
}

// Status of an imported task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsClosed reports whether the task needs no further work
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority of an imported task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ImportedTask is one materialized spreadsheet row
type ImportedTask struct {
	RowNumber           int           `json:"row_number"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Status              Status        `json:"status"`
	Priority            Priority      `json:"priority"`
	Progress            int           `json:"progress"`
	StartDate           *core.Date    `json:"start_date,omitempty"`
	DueDate             *core.Date    `json:"due_date,omitempty"`
	EstimatedHours      *float64      `json:"estimated_hours,omitempty"`
	ActualHours         *float64      `json:"actual_hours,omitempty"`
	AssignedPersonID    core.PersonID `json:"assigned_person_id,omitempty"`
	AssignedEmail       string        `json:"assigned_email,omitempty"`
	AssignedName        string        `json:"assigned_name,omitempty"`
	AssignedDisplayText string        `json:"assigned_display_text,omitempty"`
	Tags                []string      `json:"tags"`
	Color               string        `json:"color,omitempty"`
}

// IsAssigned reports whether the assignee resolved to a directory entry
func (t ImportedTask) IsAssigned() bool {
	return t.AssignedPersonID != "" || t.AssignedEmail != ""
}

// Collaborator is a known project member
type Collaborator struct {
	PersonID    core.PersonID `json:"personId"`
	DisplayName string        `json:"displayName"`
	Email       string        `json:"email"`
}

// Directory is the ordered set of collaborators of the target project
type Directory []Collaborator

// NotificationGroup carries every open task of one recipient
type NotificationGroup struct {
	RecipientEmail       string         `json:"recipient_email"`
	RecipientDisplayName string         `json:"recipient_display_name"`
	Tasks                []ImportedTask `json:"tasks"`
}

// ImportProgress is a snapshot emitted after each committed task
type ImportProgress struct {
	Current          int    `json:"current"`
	Total            int    `json:"total"`
	CurrentItemLabel string `json:"current_item_label"`
}

// ColumnMapping assigns fields to column indexes. A column is claimed by at
// most one field.
type ColumnMapping struct {
	columns map[FieldKey]int
}

// NewColumnMapping returns an empty mapping
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{columns: make(map[FieldKey]int)}
}

// Column returns the column index of a field
func (m ColumnMapping) Column(f FieldKey) (int, bool) {
	col, ok := m.columns[f]
	return col, ok
}

// FieldFor returns the field claiming a column
func (m ColumnMapping) FieldFor(col int) (FieldKey, bool) {
	for f, c := range m.columns {
		if c == col {
			return f, true
		}
	}
	return "", false
}

// Set maps a field to a column, releasing the column from any other field
func (m *ColumnMapping) Set(f FieldKey, col int) {
	if m.columns == nil {
		m.columns = make(map[FieldKey]int)
	}
	if other, ok := m.FieldFor(col); ok && other != f {
		delete(m.columns, other)
	}
	m.columns[f] = col
}

// Clear unmaps a field
func (m *ColumnMapping) Clear(f FieldKey) {
	delete(m.columns, f)
}

// Len returns the number of mapped fields
func (m ColumnMapping) Len() int {
	return len(m.columns)
}

// Clone returns an independent copy
func (m ColumnMapping) Clone() ColumnMapping {
	out := NewColumnMapping()
	for f, c := range m.columns {
		out.columns[f] = c
	}
	return out
}

// Equal compares two mappings
func (m ColumnMapping) Equal(o ColumnMapping) bool {
	if len(m.columns) != len(o.columns) {
		return false
	}
	for f, c := range m.columns {
		if oc, ok := o.columns[f]; !ok || oc != c {
			return false
		}
	}
	return true
}

// Entries lists mapped fields in canonical field order
func (m ColumnMapping) Entries() []MappingEntry {
	entries := make([]MappingEntry, 0, len(m.columns))
	for _, f := range allFields {
		if c, ok := m.columns[f]; ok {
			entries = append(entries, MappingEntry{Field: f, Column: c})
		}
	}
	return entries
}

// AsMap returns field name -> column index, for serialization
func (m ColumnMapping) AsMap() map[string]int {
	out := make(map[string]int, len(m.columns))
	for f, c := range m.columns {
		out[string(f)] = c
	}
	return out
}

// MappingEntry is one field -> column assignment
type MappingEntry struct {
	Field  FieldKey `json:"field"`
	Column int      `json:"column"`
}

// SortedColumns returns the claimed column indexes in ascending order
func (m ColumnMapping) SortedColumns() []int {
	cols := make([]int, 0, len(m.columns))
	for _, c := range m.columns {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

func (m ColumnMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.AsMap())
}
