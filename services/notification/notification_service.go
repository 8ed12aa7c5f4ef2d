package notificationService

import "eon-notify/data"

// NotificationService is the authoritative per-user notification store. The
// in-memory collection is the source of truth for the current session; the
// repository blob is kept in sync best-effort, and a persistence failure
// never fails the caller.
type NotificationService interface {
	// SetSession swaps the visible collection to the given user's
	// namespace, pruning records outside the retention window as it loads.
	SetSession(session data.Session) error
	// ClearSession discards the in-memory collection, returning the store
	// to the anonymous (empty) state.
	ClearSession()

	// Add classifies the draft via the event catalog and prepends a full
	// record to the collection. Drafts with an unknown event type are
	// logged and dropped without error.
	Add(draft data.NotificationDraft) error

	MarkRead(id string)
	MarkUnread(id string)
	MarkAllRead()
	Delete(id string)
	ClearAll()

	// Query returns records matching the filter, newest first. A nil
	// filter returns the whole collection.
	Query(filter *data.NotificationFilter) []data.StoredNotification
	// Stats recomputes aggregate statistics from the current collection.
	Stats() data.NotificationStats
}
