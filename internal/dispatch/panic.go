package dispatch

import (
	"context"
	"time"

	"github.com/safetrail/engine/internal/alert"
)

// PanicTrigger builds and sends the maximum-severity alert raised by
// explicit user action.
type PanicTrigger struct {
	dispatcher *Dispatcher
}

// NewPanicTrigger creates a panic trigger delivering through dispatcher.
func NewPanicTrigger(dispatcher *Dispatcher) *PanicTrigger {
	return &PanicTrigger{dispatcher: dispatcher}
}

// SendPanic dispatches a HIGH severity PANIC_BUTTON alert and waits for
// the delivery outcome so the UI can report success or failure.
func (p *PanicTrigger) SendPanic(ctx context.Context, loc *alert.Location, message string) error {
	now := time.Now()
	a := alert.New(alert.CategoryPanicButton, alert.SeverityHigh, message, now)
	a.Location = loc
	a.Metadata = map[string]any{
		"timestamp": now.UTC().Format(time.RFC3339),
		"source":    "mobile_app",
	}
	return p.dispatcher.DispatchAndWait(ctx, a)
}
