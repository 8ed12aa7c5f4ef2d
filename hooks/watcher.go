// Package hooks implements narrow consumers of the connection manager:
// watch one event type scoped to one resource owner and invoke a callback
// exactly once per distinct update.
package hooks

import (
	"sync"

	"eon-notify/connection"
	"eon-notify/data"
	"eon-notify/logger"
)

// ResourceWatcher subscribes to a single event type and forwards updates
// targeting one owner. Updates are deduplicated on target id plus update
// timestamp, so a re-delivered or re-observed event never fires the
// callback twice.
type ResourceWatcher struct {
	manager     *connection.Manager
	eventType   string
	targetField string
	targetId    string
	onUpdate    func(data.DomainEvent)

	mu      sync.Mutex
	lastKey string
	subId   int
	active  bool
}

func NewResourceWatcher(manager *connection.Manager, eventType, targetField, targetId string, onUpdate func(data.DomainEvent)) *ResourceWatcher {
	return &ResourceWatcher{
		manager:     manager,
		eventType:   eventType,
		targetField: targetField,
		targetId:    targetId,
		onUpdate:    onUpdate,
	}
}

// Start begins watching. Idempotent.
func (w *ResourceWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		return
	}
	w.subId = w.manager.Subscribe(w.eventType, w.handle)
	w.active = true
}

// Stop ends watching. Idempotent.
func (w *ResourceWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active {
		return
	}
	w.manager.Unsubscribe(w.eventType, w.subId)
	w.active = false
}

func (w *ResourceWatcher) handle(evt data.DomainEvent) {
	target := data.PayloadString(evt.Payload, w.targetField)
	if target != w.targetId {
		return
	}

	key := target + "|" + data.PayloadString(evt.Payload, "updatedAt")
	w.mu.Lock()
	if key == w.lastKey {
		w.mu.Unlock()
		return
	}
	w.lastKey = key
	w.mu.Unlock()

	w.onUpdate(evt)
}

// PhotoUpdate is the decoded payload handed to a photo watcher callback.
type PhotoUpdate struct {
	UserID    string `json:"userId"`
	PhotoURL  string `json:"photoUrl"`
	UpdatedAt string `json:"updatedAt"`
}

// PhotoWatcher reacts to profile photo updates for one user.
type PhotoWatcher struct {
	*ResourceWatcher
	manager *connection.Manager
	userId  string
}

// NewPhotoWatcher watches photo updates targeting userId and invokes
// onUpdate exactly once per distinct update.
func NewPhotoWatcher(manager *connection.Manager, userId string, onUpdate func(PhotoUpdate)) *PhotoWatcher {
	inner := NewResourceWatcher(manager, data.USER_PHOTO_UPDATED, "userId", userId, func(evt data.DomainEvent) {
		onUpdate(PhotoUpdate{
			UserID:    data.PayloadString(evt.Payload, "userId"),
			PhotoURL:  data.PayloadString(evt.Payload, "photoUrl"),
			UpdatedAt: data.PayloadString(evt.Payload, "updatedAt"),
		})
	})
	return &PhotoWatcher{ResourceWatcher: inner, manager: manager, userId: userId}
}

// ForceRefresh asks the backend to re-emit the current photo state.
// Best-effort: a disconnected channel is a logged no-op.
func (w *PhotoWatcher) ForceRefresh() {
	if err := w.manager.Emit(data.REFRESH_PHOTO, map[string]string{"userId": w.userId}); err != nil {
		logger.Log.Debug(logger.LogPayload{
			Component: "Photo Watcher",
			Operation: "ForceRefresh",
			Message:   "Refresh request skipped, channel not connected",
			Error:     err,
			UserId:    w.userId,
		})
	}
}
