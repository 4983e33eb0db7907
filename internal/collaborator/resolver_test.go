package collaborator

import (
	"testing"

	"sheetimport/domain/task"

	"github.com/stretchr/testify/assert"
)

var team = task.Directory{
	{PersonID: "p1", DisplayName: "Anna Smith", Email: "anna@acme.io"},
	{PersonID: "p2", DisplayName: "Jean Dupont", Email: "jean.dupont@acme.io"},
	{PersonID: "p3", DisplayName: "Hélène Martin", Email: "helene@acme.io"},
	{PersonID: "p4", DisplayName: "Bob Stone", Email: "smith@corp.io"},
}

func TestResolve(t *testing.T) {
	r := NewResolver(team)

	tests := []struct {
		name   string
		input  string
		want   string
		method Method
	}{
		{"exact email", "JEAN.DUPONT@acme.io", "p2", MethodEmail},
		{"email in address form", "Jean <jean.dupont@acme.io>", "p2", MethodEmail},
		{"email beats substring", "smith@corp.io", "p4", MethodEmail},
		{"exact name", "  anna smith ", "p1", MethodName},
		{"initials", "HM", "p3", MethodInitials},
		{"dotted initials", "h.m.", "p3", MethodInitials},
		{"token substring", "J. Dupont", "p2", MethodPartial},
		{"accent folded", "helene", "p3", MethodPartial},
		{"name inside input", "Mr Bob Stone (contractor)", "p4", MethodPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, method, ok := r.ResolveWithMethod(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.want, c.PersonID.String())
			assert.Equal(t, tt.method, method)
		})
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := NewResolver(team)
	for _, in := range []string{"", "   ", "Zorro", "ZZ", "nobody@acme.io", "x"} {
		_, ok := r.Resolve(in)
		assert.False(t, ok, "input %q", in)
	}

	_, ok := NewResolver(nil).Resolve("Anna Smith")
	assert.False(t, ok)
}

func TestResolveInitialsMustBeUnique(t *testing.T) {
	unique := NewResolver(task.Directory{
		{PersonID: "p1", DisplayName: "Jean Dupont"},
		{PersonID: "p2", DisplayName: "Marie Curie"},
	})
	c, ok := unique.Resolve("JD")
	assert.True(t, ok)
	assert.Equal(t, "p1", c.PersonID.String())

	ambiguous := NewResolver(task.Directory{
		{PersonID: "p1", DisplayName: "Jean Dupont"},
		{PersonID: "p2", DisplayName: "Julie Durand"},
	})
	_, ok = ambiguous.Resolve("JD")
	assert.False(t, ok)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "JD", Initials("Jean Dupont"))
	assert.Equal(t, "JPD", Initials("Jean-Pierre Dupont"))
	assert.Equal(t, "EZ", Initials("Émile Zola"))
	assert.Equal(t, "JRRT", Initials("J.R.R. Tolkien"))
	assert.Equal(t, "", Initials(""))
}
