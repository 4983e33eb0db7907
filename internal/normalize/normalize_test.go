package normalize

import (
	"strconv"
	"testing"
	"time"

	"sheetimport/domain/core"
	"sheetimport/domain/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		in   string
		want task.Status
	}{
		{"terminé", task.StatusCompleted},
		{"  Done ", task.StatusCompleted},
		{"En cours", task.StatusInProgress},
		{"in-progress", task.StatusInProgress},
		{"À faire", task.StatusTodo},
		{"annulé", task.StatusCancelled},
		{"Won't do", task.StatusCancelled},
		{"erledigt", task.StatusCompleted},
		{"hecho", task.StatusCompleted},
		{"", task.StatusTodo},
		{"something else", task.StatusTodo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.in))
		})
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		in   string
		want task.Priority
	}{
		{"haute", task.PriorityHigh},
		{"Basse", task.PriorityLow},
		{"moyenne", task.PriorityMedium},
		{"URGENT", task.PriorityUrgent},
		{"P1", task.PriorityUrgent},
		{"élevée", task.PriorityHigh},
		{"whenever", task.PriorityMedium},
		{"", task.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Priority(tt.in))
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"serial", "42000", "2014-12-28"},
		{"serial with time of day", "42000.75", "2014-12-28"},
		{"lower serial bound", "18264", "1950-01-01"},
		{"upper serial bound", "73415", "2100-12-31"},
		{"iso", "2024-03-12", "2024-03-12"},
		{"rfc3339", "2024-03-12T23:30:00Z", "2024-03-12"},
		{"iso with time", "2024-03-12 08:00:00", "2024-03-12"},
		{"slashed iso", "2024/03/12", "2024-03-12"},
		{"month first", "3/12/2024", "2024-03-12"},
		{"month name", "Mar 12, 2024", "2024-03-12"},
		{"day month name", "12 March 2024", "2024-03-12"},
		{"day first fallback", "25/12/2024", "2024-12-25"},
		{"day first dashes", "31-01-2024", "2024-01-31"},
		{"day first short year", "25/12/24", "2024-12-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.in)
			require.NotNil(t, got, "input %q", tt.in)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "2024", "18263", "73416", "100", "1e5", "soon", "31/02/2024", "13/13/2024", "-42000"} {
		assert.Nil(t, Date(in), "input %q", in)
	}
}

func TestSerialRoundTrip(t *testing.T) {
	start := core.NewDate(1950, time.January, 1)
	for _, d := range []core.Date{
		start,
		core.NewDate(1999, time.December, 31),
		core.NewDate(2000, time.February, 29),
		core.NewDate(2024, time.March, 12),
		core.NewDate(2100, time.December, 31),
	} {
		serial := SerialOf(d)
		got := Date(strconv.Itoa(serial))
		require.NotNil(t, got, "serial %d", serial)
		assert.Equal(t, d, *got)
	}
	assert.Equal(t, MinSerial, SerialOf(start))
}

func TestHours(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2", 2},
		{"1,5", 1.5},
		{"1.5", 1.5},
		{"3h", 3},
		{"2.5 hrs", 2.5},
		{"4 heures", 4},
		{"1,234.5", 1234.5},
		{"1.234,5", 1234.5},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Hours(tt.in)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}

	for _, in := range []string{"", "-1", "abc", "NaN", "Inf", "h"} {
		assert.Nil(t, Hours(in), "input %q", in)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"75%", 75},
		{"75 %", 75},
		{"42.6", 43},
		{"150", 100},
		{"-10", 0},
		{"0.75", 1},
		{"12,5%", 13},
		{"half", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.in))
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"backend", "urgent", "api"}, Tags(" backend, urgent;; api ,Backend"))
	assert.Equal(t, []string{}, Tags(""))
	assert.Equal(t, []string{}, Tags(" ; , "))
}

func TestColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#FF8800", "#ff8800"},
		{"ff8800", "#ff8800"},
		{"#abc", "#aabbcc"},
		{" #0F0 ", "#00ff00"},
		{"red", ""},
		{"#ggg", ""},
		{"#12345", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(tt.in))
		})
	}
}
