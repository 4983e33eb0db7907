package memory

import (
	"context"
	"testing"

	"sheetimport/domain/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreKeepsProjectsApart(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	apollo := store.ForProject("apollo")
	id1, err := apollo.CreateTask(ctx, task.ImportedTask{Title: "one", Tags: []string{"a"}})
	require.NoError(t, err)
	id2, err := apollo.CreateTask(ctx, task.ImportedTask{Title: "two"})
	require.NoError(t, err)
	_, err = store.ForProject("zeus").CreateTask(ctx, task.ImportedTask{Title: "other"})
	require.NoError(t, err)

	got := store.Tasks("apollo")
	require.Len(t, got, 2)
	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, "one", got[0].Title)
	assert.Equal(t, id2, got[1].ID)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, store.Tasks("zeus"), 1)
	assert.Empty(t, store.Tasks("hermes"))
}

func TestTaskStoreHonoursCancellation(t *testing.T) {
	store := NewTaskStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "apollo", task.ImportedTask{Title: "late"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Tasks("apollo"))
}
