// Package toast is the outbound ephemeral-notification boundary. The host
// application supplies its own Toaster; LogToaster is the fallback sink.
package toast

import (
	"fmt"
	"time"

	"eon-notify/data"
	"eon-notify/logger"
)

// Toast is one ephemeral notification. Important flags the toast for
// sound/attention treatment by the host UI.
type Toast struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"duration"`
	Important   bool          `json:"important"`
	ActionURL   string        `json:"actionUrl,omitempty"`
	ActionLabel string        `json:"actionLabel,omitempty"`
}

// Toaster delivers ephemeral toasts. Implementations must not block.
type Toaster interface {
	Show(t Toast)
}

// DurationFor scales toast display time by priority.
func DurationFor(priority string) time.Duration {
	switch priority {
	case data.PRIORITY_URGENT:
		return 10 * time.Second
	case data.PRIORITY_HIGH:
		return 8 * time.Second
	case data.PRIORITY_MEDIUM:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

// Important reports whether a priority warrants the sound/attention flag.
func Important(priority string) bool {
	return priority == data.PRIORITY_HIGH || priority == data.PRIORITY_URGENT
}

// LogToaster writes toasts to the structured log. Used by the demo daemon
// and wherever the host application has not wired a UI sink.
type LogToaster struct{}

func (LogToaster) Show(t Toast) {
	logger.Log.Info(logger.LogPayload{
		Component: "Toast",
		Operation: "Show",
		Message:   fmt.Sprintf("%s — %s (important=%v)", t.Title, t.Description, t.Important),
	})
}
