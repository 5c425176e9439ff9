// Package notify sends desktop notifications via D-Bus when a long import
// finishes.
package notify

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// DefaultTimeout lets the notification server pick the expiry.
const DefaultTimeout int32 = -1

// Notification contains data for a desktop notification.
type Notification struct {
	Title   string
	Body    string
	Timeout int32 // ms, -1 = server default, 0 = never expire
	Urgency Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification. It returns nil when notifications are
	// unavailable.
	Notify(n Notification) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Notification) error { return nil }
func (Nop) Close() error              { return nil }

// ImportFinished describes the outcome of an import or rescan.
func ImportFinished(kind, root string, imported, skipped int, err error) Notification {
	if err != nil {
		return Notification{
			Title:   fmt.Sprintf("crate %s failed", kind),
			Body:    fmt.Sprintf("%s: %v", root, err),
			Timeout: DefaultTimeout,
			Urgency: UrgencyCritical,
		}
	}

	body := fmt.Sprintf("%s songs from %s", humanize.Comma(int64(imported)), root)
	if skipped > 0 {
		body += fmt.Sprintf("\n%s unreadable files skipped", humanize.Comma(int64(skipped)))
	}
	return Notification{
		Title:   fmt.Sprintf("crate %s finished", kind),
		Body:    body,
		Timeout: DefaultTimeout,
		Urgency: UrgencyLow,
	}
}
