package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "echeance", Fold("Échéance"))
	assert.Equal(t, "prioritat", Fold("Priorität"))
	assert.Equal(t, "jean dupont", Fold("Jean Dupont"))
}

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nom de la tâche", "nom_de_la_tache"},
		{"  Due-Date (UTC) ", "due_date_utc"},
		{"__Estimated   hours__", "estimated_hours"},
		{"% complete", "complete"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in, '_'))
		})
	}
}
