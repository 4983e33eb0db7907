package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{" DEBUG ", LogLevelDebug},
		{"TRACE", LogLevelTrace},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), tt.input)
	}
}

func TestDerivedLoggerFollowsParentLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	flags := log.Flags()
	log.SetFlags(0)
	defer log.SetFlags(flags)

	root := NewLogger(LogLevelInfo)
	child := root.With("Reader")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	root.SetLevel(LogLevelDebug)
	child.Debug("rows=%d", 3)
	assert.Equal(t, "[DEBUG] [Reader] rows=3\n", buf.String())
}
