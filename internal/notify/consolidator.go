// Package notify groups imported tasks per assignee and renders the
// resulting notification messages.
package notify

import (
	"strings"

	"sheetimport/domain/task"
)

// Consolidate groups open, assigned tasks by recipient email. Emails compare
// case-insensitively; groups and their tasks keep first-seen order, and the
// first-seen spelling of the email is kept.
func Consolidate(tasks []task.ImportedTask) []task.NotificationGroup {
	var groups []task.NotificationGroup
	index := make(map[string]int)

	for _, t := range tasks {
		if t.Status.IsClosed() {
			continue
		}
		email := strings.TrimSpace(t.AssignedEmail)
		if email == "" {
			continue
		}

		k := strings.ToLower(email)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, task.NotificationGroup{
				RecipientEmail:       email,
				RecipientDisplayName: displayName(t, email),
			})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

func displayName(t task.ImportedTask, email string) string {
	for _, name := range []string{t.AssignedName, t.AssignedDisplayText} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return email
}

// TaskCount returns the number of tasks across groups
func TaskCount(groups []task.NotificationGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Tasks)
	}
	return n
}
