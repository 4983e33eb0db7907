package notify

import (
	"testing"
	"time"

	"sheetimport/domain/core"
	"sheetimport/domain/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assigned(title, email, name string, status task.Status) task.ImportedTask {
	return task.ImportedTask{
		Title:               title,
		Status:              status,
		Priority:            task.PriorityMedium,
		AssignedEmail:       email,
		AssignedName:        name,
		AssignedDisplayText: name,
	}
}

func TestConsolidate(t *testing.T) {
	tasks := []task.ImportedTask{
		assigned("a", "Jean@Acme.io", "Jean Dupont", task.StatusTodo),
		assigned("b", "anna@acme.io", "Anna Smith", task.StatusInProgress),
		assigned("c", "jean@acme.io", "Jean Dupont", task.StatusTodo),
		assigned("d", "anna@acme.io", "Anna Smith", task.StatusCompleted),
		assigned("e", "bob@acme.io", "Bob", task.StatusCancelled),
		{Title: "f", Status: task.StatusTodo, AssignedDisplayText: "Somebody"},
	}

	groups := Consolidate(tasks)
	require.Len(t, groups, 2)

	assert.Equal(t, "Jean@Acme.io", groups[0].RecipientEmail)
	assert.Equal(t, "Jean Dupont", groups[0].RecipientDisplayName)
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "a", groups[0].Tasks[0].Title)
	assert.Equal(t, "c", groups[0].Tasks[1].Title)

	assert.Equal(t, "anna@acme.io", groups[1].RecipientEmail)
	require.Len(t, groups[1].Tasks, 1)
	assert.Equal(t, "b", groups[1].Tasks[0].Title)

	assert.Equal(t, 3, TaskCount(groups))
}

func TestConsolidateGroupCountMatchesDistinctEmails(t *testing.T) {
	emails := []string{"a@x.io", "B@x.io", "b@x.io", "", "c@x.io", "A@X.IO", ""}
	var tasks []task.ImportedTask
	for i, e := range emails {
		tasks = append(tasks, assigned(string(rune('a'+i)), e, "", task.StatusTodo))
	}

	groups := Consolidate(tasks)
	assert.Len(t, groups, 3)
	for _, g := range groups {
		assert.Equal(t, g.RecipientEmail, g.RecipientDisplayName)
		for _, tk := range g.Tasks {
			assert.NotEmpty(t, tk.AssignedEmail)
		}
	}
}

func TestConsolidateEmpty(t *testing.T) {
	assert.Empty(t, Consolidate(nil))
	assert.Empty(t, Consolidate([]task.ImportedTask{{Title: "x", Status: task.StatusTodo}}))
}

func TestRender(t *testing.T) {
	due := core.NewDate(2024, time.March, 12)
	group := task.NotificationGroup{
		RecipientEmail:       "jean@acme.io",
		RecipientDisplayName: "Jean Dupont",
		Tasks: []task.ImportedTask{
			{Title: "Write *spec*", Priority: task.PriorityHigh, Status: task.StatusTodo, DueDate: &due},
			{Title: "<script>alert(1)</script>", Priority: task.PriorityLow, Status: task.StatusInProgress},
		},
	}

	msg, err := Render(group, RenderOptions{Sender: "noreply@acme.io", ProjectName: "Apollo", AppBaseURL: "https://app.acme.io/"})
	require.NoError(t, err)

	assert.Equal(t, "jean@acme.io", msg.To)
	assert.Equal(t, "noreply@acme.io", msg.From)
	assert.Equal(t, "[Apollo] 2 new tasks assigned to you", msg.Subject)
	assert.Contains(t, msg.Markdown, `- **Write \*spec\*** (due 2024-03-12, high priority)`)
	assert.Contains(t, msg.Markdown, "low priority, in progress")
	assert.Contains(t, msg.Markdown, "(https://app.acme.io)")

	assert.Contains(t, msg.HTML, "<strong>")
	assert.Contains(t, msg.HTML, "Write *spec*")
	assert.Contains(t, msg.HTML, "<li>")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, `href="https://app.acme.io"`)
}

func TestRenderSingleTask(t *testing.T) {
	msg, err := Render(task.NotificationGroup{
		RecipientEmail: "a@x.io",
		Tasks:          []task.ImportedTask{{Title: "One", Priority: task.PriorityMedium}},
	}, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1 new task assigned to you", msg.Subject)

	_, err = Render(task.NotificationGroup{}, RenderOptions{})
	assert.Error(t, err)
}
