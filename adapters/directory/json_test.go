package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sheetimport/domain/core"
	"sheetimport/domain/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want task.Directory
	}{
		{
			name: "array",
			doc:  `[{"id":"p1","name":"Jean Dupont","email":"jean@acme.io"},{"personId":"p2","displayName":"Anna Smith"}]`,
			want: task.Directory{
				{PersonID: "p1", DisplayName: "Jean Dupont", Email: "jean@acme.io"},
				{PersonID: "p2", DisplayName: "Anna Smith"},
			},
		},
		{
			name: "owner first",
			doc:  `{"collaborators":[{"id":"p2","name":"Anna"}],"owner":{"id":"p1","name":"Olga"}}`,
			want: task.Directory{
				{PersonID: "p1", DisplayName: "Olga"},
				{PersonID: "p2", DisplayName: "Anna"},
			},
		},
		{
			name: "id from email and duplicates dropped",
			doc:  `[{"name":"Bob","email":"Bob@Corp.io"},{"name":"Bob again","email":"bob@corp.io"}]`,
			want: task.Directory{{PersonID: "bob@corp.io", DisplayName: "Bob", Email: "Bob@Corp.io"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			got, err := p.Directory(context.Background(), "any")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProjects(t *testing.T) {
	p, err := Parse([]byte(`{"projects":{"apollo":[{"id":"p1","name":"Jean"}],"zeus":{"owner":{"id":"p9","name":"Zed"}}}}`))
	require.NoError(t, err)

	dir, err := p.Directory(context.Background(), "zeus")
	require.NoError(t, err)
	assert.Equal(t, "Zed", dir[0].DisplayName)

	_, err = p.Directory(context.Background(), "hermes")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestParseRejects(t *testing.T) {
	for _, doc := range []string{`{`, `"x"`, `[{"id":"p1"}]`, `{"projects":{"a":3}}`} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoadFileAndStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"p1","name":"Jean"}]`), 0o600))

	p, err := LoadFile(path)
	require.NoError(t, err)
	dir, err := p.Directory(context.Background(), "apollo")
	require.NoError(t, err)
	assert.Len(t, dir, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	static := Static(task.Directory{{PersonID: "p1", DisplayName: "Jean"}})
	dir, err = static.Directory(context.Background(), "whatever")
	require.NoError(t, err)
	dir[0].DisplayName = "changed"
	again, _ := static.Directory(context.Background(), "whatever")
	assert.Equal(t, "Jean", again[0].DisplayName)
}
