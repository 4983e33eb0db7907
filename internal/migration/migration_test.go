package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepsAreIdempotent(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	steps := r.steps()
	assert.NotEmpty(t, steps)
	for _, s := range steps {
		assert.Regexp(t, `(?i)IF NOT EXISTS`, s.sql, s.name)
	}
}
