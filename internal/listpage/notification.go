package listpage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/enseada-console/internal/platform/logging"
)

// Severity of a user-facing notification.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Placement of a notification in the viewport.
type Placement string

const (
	PlacementTopRight    Placement = "top-right"
	PlacementBottomRight Placement = "bottom-right"
)

// deletionNoticeDuration is how long deletion notices stay on screen.
const deletionNoticeDuration = 10 * time.Second

// Notification is a message for the toast system of the hosting view.
type Notification struct {
	Message   string
	Severity  Severity
	Placement Placement
	Duration  time.Duration
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// ErrorHandler receives the "error" events of a controller.
type ErrorHandler func(ctx context.Context, err error)

func deletedNotice(name, id string) Notification {
	return Notification{
		Message:   fmt.Sprintf("Deleted %s %s", name, id),
		Severity:  SeverityWarning,
		Placement: PlacementBottomRight,
		Duration:  deletionNoticeDuration,
	}
}

func logNotifier(ctx context.Context, n Notification) {
	applog.LogInfo(ctx, "notification",
		zap.String("message", n.Message),
		zap.String("severity", string(n.Severity)),
	)
}

func logErrorHandler(ctx context.Context, err error) {
	applog.LogError(ctx, "list page operation failed", err)
}
