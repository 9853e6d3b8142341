package console

import (
	"context"
	"sync"
	"time"

	"github.com/janisto/enseada-console/internal/listpage"
	applog "github.com/janisto/enseada-console/internal/platform/logging"
)

// EventType distinguishes controller errors from user notifications.
type EventType string

const (
	EventError        EventType = "error"
	EventNotification EventType = "notification"
)

// maxBufferedEvents bounds a feed that nobody drains; the oldest events are dropped first.
const maxBufferedEvents = 100

// Event is an error or notification raised by a view, waiting to be shown.
type Event struct {
	Type      EventType
	Message   string
	Severity  listpage.Severity
	Placement listpage.Placement
	Duration  time.Duration
	At        time.Time
}

// feed buffers the events of one view until the UI drains them.
type feed struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func newFeed(now func() time.Time) *feed {
	return &feed{now: now}
}

func (f *feed) push(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == maxBufferedEvents {
		f.events = f.events[1:]
	}
	f.events = append(f.events, e)
}

func (f *feed) drain() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

// Notify implements listpage.Notifier.
func (f *feed) Notify(ctx context.Context, n listpage.Notification) {
	applog.LogInfo(ctx, n.Message)
	f.push(Event{
		Type:      EventNotification,
		Message:   n.Message,
		Severity:  n.Severity,
		Placement: n.Placement,
		Duration:  n.Duration,
		At:        f.now(),
	})
}

// onError is the controller's error handler.
func (f *feed) onError(ctx context.Context, err error) {
	applog.LogError(ctx, "list page operation failed", err)
	f.push(Event{
		Type:      EventError,
		Message:   err.Error(),
		Severity:  listpage.SeverityDanger,
		Placement: listpage.PlacementTopRight,
		At:        f.now(),
	})
}
