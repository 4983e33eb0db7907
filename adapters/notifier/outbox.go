// Package notifier delivers rendered import notifications.
package notifier

import (
	"context"
	"log"
	"sync"

	"sheetimport/domain/task"
	"sheetimport/internal/notify"
)

// Outbox renders each notification and keeps it in memory. It stands in for
// a mail transport: messages are logged and can be listed.
type Outbox struct {
	opts notify.RenderOptions

	mu       sync.Mutex
	messages []notify.Message
}

// NewOutbox creates an empty outbox
func NewOutbox(opts notify.RenderOptions) *Outbox {
	return &Outbox{opts: opts}
}

// Notify renders group and stores the message
func (o *Outbox) Notify(ctx context.Context, group task.NotificationGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := notify.Render(group, o.opts)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.mu.Unlock()

	log.Printf("[Notifier] queued %q for %s", msg.Subject, msg.To)
	return nil
}

// List returns the messages sent so far
func (o *Outbox) List() []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]notify.Message(nil), o.messages...)
}

// Count returns the number of messages sent so far
func (o *Outbox) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}
