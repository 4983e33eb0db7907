package notify

import (
	"fmt"
	"strings"

	"sheetimport/domain/task"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// RenderOptions holds the sender-side details of a notification
type RenderOptions struct {
	Sender      string
	ProjectName string
	AppBaseURL  string
}

// Message is one rendered notification, ready for a mail transport
type Message struct {
	To       string `json:"to"`
	ToName   string `json:"to_name"`
	From     string `json:"from,omitempty"`
	Subject  string `json:"subject"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "<", `&lt;`, ">", `&gt;`, "|", `\|`,
)

// Render builds the single message sent to a group's recipient
func Render(group task.NotificationGroup, opts RenderOptions) (Message, error) {
	if group.RecipientEmail == "" {
		return Message{}, fmt.Errorf("notification group has no recipient")
	}

	md := renderMarkdown(group, opts)
	return Message{
		To:       group.RecipientEmail,
		ToName:   group.RecipientDisplayName,
		From:     opts.Sender,
		Subject:  subject(group, opts),
		Markdown: md,
		HTML:     toHTML(md),
	}, nil
}

func subject(group task.NotificationGroup, opts RenderOptions) string {
	noun := "task"
	if len(group.Tasks) != 1 {
		noun = "tasks"
	}
	s := fmt.Sprintf("%d new %s assigned to you", len(group.Tasks), noun)
	if opts.ProjectName != "" {
		s = fmt.Sprintf("[%s] %s", opts.ProjectName, s)
	}
	return s
}

func renderMarkdown(group task.NotificationGroup, opts RenderOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", escape(group.RecipientDisplayName))
	if opts.ProjectName != "" {
		fmt.Fprintf(&b, "The following tasks were imported into **%s** and assigned to you:\n\n", escape(opts.ProjectName))
	} else {
		b.WriteString("The following tasks were imported and assigned to you:\n\n")
	}

	for _, t := range group.Tasks {
		fmt.Fprintf(&b, "- **%s**", escape(t.Title))
		var details []string
		if t.DueDate != nil {
			details = append(details, "due "+t.DueDate.String())
		}
		details = append(details, string(t.Priority)+" priority")
		if t.Status == task.StatusInProgress {
			details = append(details, "in progress")
		}
		fmt.Fprintf(&b, " (%s)\n", strings.Join(details, ", "))
	}

	if opts.AppBaseURL != "" {
		fmt.Fprintf(&b, "\n[Open the project](%s)\n", strings.TrimRight(opts.AppBaseURL, "/"))
	}
	return b.String()
}

func escape(s string) string {
	return markdownEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

// toHTML renders markdown and strips anything outside the user content policy
func toHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.ToHTML([]byte(md), p, renderer)
	return string(bluemonday.UGCPolicy().SanitizeBytes(out))
}
