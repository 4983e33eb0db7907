package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnMappingSetStealsColumn(t *testing.T) {
	m := NewColumnMapping()
	m.Set(FieldTitle, 0)
	m.Set(FieldDescription, 1)

	m.Set(FieldStatus, 1)

	_, ok := m.Column(FieldDescription)
	assert.False(t, ok, "description should lose column 1")
	col, ok := m.Column(FieldStatus)
	assert.True(t, ok)
	assert.Equal(t, 1, col)
	assert.Equal(t, 2, m.Len())
}

func TestColumnMappingCloneIsIndependent(t *testing.T) {
	m := NewColumnMapping()
	m.Set(FieldTitle, 2)

	c := m.Clone()
	c.Set(FieldTitle, 3)

	col, _ := m.Column(FieldTitle)
	assert.Equal(t, 2, col)
	assert.False(t, m.Equal(c))
}

func TestColumnMappingEntriesCanonicalOrder(t *testing.T) {
	var m ColumnMapping
	m.Set(FieldColor, 0)
	m.Set(FieldTitle, 4)
	m.Set(FieldDueDate, 2)

	assert.Equal(t, []MappingEntry{
		{Field: FieldTitle, Column: 4},
		{Field: FieldDueDate, Column: 2},
		{Field: FieldColor, Column: 0},
	}, m.Entries())
	assert.Equal(t, []int{0, 2, 4}, m.SortedColumns())
	assert.Equal(t, map[string]int{"title": 4, "due_date": 2, "color": 0}, m.AsMap())
}

func TestParseFieldKey(t *testing.T) {
	f, ok := ParseFieldKey("estimated_hours")
	assert.True(t, ok)
	assert.Equal(t, FieldEstimatedHours, f)

	_, ok = ParseFieldKey("owner")
	assert.False(t, ok)
	assert.Len(t, AllFields(), 12)
	assert.True(t, FieldTitle.Required())
	assert.False(t, FieldTags.Required())
}

func TestStatusIsClosed(t *testing.T) {
	assert.True(t, StatusCompleted.IsClosed())
	assert.True(t, StatusCancelled.IsClosed())
	assert.False(t, StatusTodo.IsClosed())
	assert.False(t, StatusInProgress.IsClosed())
}
