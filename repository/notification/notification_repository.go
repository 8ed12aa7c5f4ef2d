package notificationRepository

import "eon-notify/data"

// NotificationRepository persists the per-user notification collection as a
// single blob keyed by user ID. The store owns the blob exclusively for one
// user at a time; no other component writes to it.
type NotificationRepository interface {
	// Load returns the stored collection for the user, or an empty slice
	// when nothing has been persisted yet.
	Load(userId string) ([]data.StoredNotification, error)
	// Save replaces the stored collection for the user.
	Save(userId string, records []data.StoredNotification) error
	// Clear removes the persisted blob for the user.
	Clear(userId string) error
}

// StorageKey is the namespace under which a user's collection is persisted.
func StorageKey(userId string) string {
	return "notifications_" + userId
}
