package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sheetimport/adapters/excel"
	"sheetimport/app"
	"sheetimport/domain/task"
	"sheetimport/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDirectories map[string]task.Directory

func (s staticDirectories) Directory(ctx context.Context, projectID string) (task.Directory, error) {
	dir, ok := s[projectID]
	if !ok {
		return nil, fmt.Errorf("unknown project %q", projectID)
	}
	return dir, nil
}

func newManager(ttl time.Duration) *Manager {
	factory := func(dir task.Directory) *app.ImportPipeline {
		return app.NewImportPipeline(excel.NewReader(excel.DefaultReaderConfig()), nil, dir, app.DefaultPipelineOptions())
	}
	dirs := staticDirectories{"apollo": {{PersonID: "p1", DisplayName: "Jean Dupont", Email: "jean@acme.io"}}}
	return NewManager(factory, dirs, ttl)
}

func TestManagerLifecycle(t *testing.T) {
	m := newManager(time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, "apollo")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID.String())
	require.NoError(t, err)
	assert.Same(t, s, got)

	err = got.Do(func(p *app.ImportPipeline) error {
		assert.Equal(t, app.StateSourcing, p.State())
		return p.LoadFile([]byte("Title\na\nb\n"), "t.csv")
	})
	require.NoError(t, err)

	assert.True(t, m.Delete(s.ID.String()))
	assert.False(t, m.Delete(s.ID.String()))

	_, err = m.Get(s.ID.String())
	assert.Equal(t, errors.CodeSessionNotFound, errors.GetCode(err))
}

func TestManagerRejectsUnknownIDs(t *testing.T) {
	m := newManager(time.Hour)
	for _, id := range []string{"", "nope", "0195d6c4-0000-7000-8000-000000000000"} {
		_, err := m.Get(id)
		assert.Equal(t, errors.CodeSessionNotFound, errors.GetCode(err), "id %q", id)
	}
}

func TestManagerUnknownProject(t *testing.T) {
	m := newManager(time.Hour)
	_, err := m.Create(context.Background(), "zeus")
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManagerSweep(t *testing.T) {
	m := newManager(time.Minute)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle, err := m.Create(context.Background(), "apollo")
	require.NoError(t, err)
	busy, err := m.Create(context.Background(), "apollo")
	require.NoError(t, err)
	fresh, err := m.Create(context.Background(), "apollo")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(fresh.ID.String())
	require.NoError(t, err)

	busy.mu.Lock()
	assert.Equal(t, 1, m.Sweep())
	busy.mu.Unlock()

	_, err = m.Get(idle.ID.String())
	assert.Error(t, err)
	assert.Equal(t, 2, m.Len())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestManagerWithoutTTLKeepsSessions(t *testing.T) {
	m := newManager(0)
	_, err := m.Create(context.Background(), "apollo")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
