package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		remote  bool
		mapping bool
	}{
		{"not found", fmt.Errorf("fetch: %w", ErrNotFound), true, false},
		{"access denied", ErrAccessDenied, true, false},
		{"not public", ErrNotPublic, true, false},
		{"timeout", ErrFetchTimeout, true, false},
		{"title not mapped", ErrTitleNotMapped, false, true},
		{"no valid rows", fmt.Errorf("materialize: %w", ErrNoValidRows), false, true},
		{"unreadable", ErrUnreadableSource, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.remote, IsRemoteFetchError(tt.err))
			assert.Equal(t, tt.mapping, IsMappingError(tt.err))
		})
	}
}

func TestInvalidURLIsUnreadableSource(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidURL, ErrUnreadableSource)
}

func TestCommitItemFailedError(t *testing.T) {
	cause := errors.New("remote 500")
	err := error(&CommitItemFailedError{Succeeded: 2, Index: 2, Title: "Write docs", Err: cause})

	assert.ErrorIs(t, err, ErrCommitItemFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 2 created")

	var commitErr *CommitItemFailedError
	assert.True(t, errors.As(fmt.Errorf("commit: %w", err), &commitErr))
	assert.Equal(t, 2, commitErr.Succeeded)
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 2, 30)
	assert.Equal(t, "2024-03-01", d.String())

	data, err := d.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(data))

	var back Date
	assert.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, d, back)
}
