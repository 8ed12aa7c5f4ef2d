package notificationService

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"eon-notify/catalog"
	"eon-notify/data"
	"eon-notify/logger"
	notificationRepository "eon-notify/repository/notification"
	"eon-notify/utils"

	"github.com/go-playground/validator/v10"
)

type NotificationServiceImpl struct {
	NotificationRepository notificationRepository.NotificationRepository
	Validate               *validator.Validate

	maxCount      int
	retentionDays int

	mu            sync.RWMutex
	session       *data.Session
	records       []data.StoredNotification
	persistFailed bool
}

// NewNotificationServiceImpl returns a new NotificationService backed by the
// given repository. maxCount caps the collection (oldest evicted first) and
// retentionDays bounds how long records survive across loads. If the
// validator instance is nil, an error is returned.
func NewNotificationServiceImpl(repository notificationRepository.NotificationRepository, validate *validator.Validate, maxCount int, retentionDays int) (NotificationService, error) {
	if validate == nil {
		return nil, errors.New("validator instance cannot be nil")
	}
	if repository == nil {
		return nil, errors.New("notification repository cannot be nil")
	}
	if maxCount <= 0 {
		maxCount = 1000
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &NotificationServiceImpl{
		NotificationRepository: repository,
		Validate:               validate,
		maxCount:               maxCount,
		retentionDays:          retentionDays,
	}, nil
}

// SetSession loads the new user's namespace, discarding the previous
// in-memory collection. Records older than the retention window are pruned
// and the pruned result is re-persisted (self-healing cleanup).
func (t *NotificationServiceImpl) SetSession(session data.Session) error {
	if err := t.Validate.Struct(session); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Notification Service",
			Operation: "SetSession",
			Message:   "Invalid session",
			Error:     err,
			UserId:    session.UserID,
		})
		return err
	}

	loaded, err := t.NotificationRepository.Load(session.UserID)
	if err != nil {
		logger.Log.Warn(logger.LogPayload{
			Component: "Notification Service",
			Operation: "SetSession",
			Message:   "Failed to load persisted notifications, starting empty for userId: " + session.UserID,
			Error:     err,
			UserId:    session.UserID,
		})
		loaded = []data.StoredNotification{}
	}

	kept, pruned := t.prune(loaded)

	t.mu.Lock()
	t.session = &session
	t.records = kept
	t.persistFailed = false
	t.mu.Unlock()

	if pruned > 0 {
		logger.Log.Info(logger.LogPayload{
			Component: "Notification Service",
			Operation: "SetSession",
			Message:   fmt.Sprintf("Pruned %d expired notifications for userId: %s", pruned, session.UserID),
			UserId:    session.UserID,
		})
		t.persist()
	}
	return nil
}

func (t *NotificationServiceImpl) ClearSession() {
	t.mu.Lock()
	t.session = nil
	t.records = nil
	t.persistFailed = false
	t.mu.Unlock()
}

// Add looks up the catalog entry for the draft's event type and prepends a
// full record to the collection (newest-first order). Unknown event types
// are a data integrity issue, not a user-facing failure: they are logged
// and dropped without mutating state.
func (t *NotificationServiceImpl) Add(draft data.NotificationDraft) error {
	if err := t.Validate.Struct(draft); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Notification Service",
			Operation: "Add",
			Message:   "Invalid notification draft",
			Error:     err,
			EventType: draft.EventType,
		})
		return err
	}

	entry, ok := catalog.Lookup(draft.EventType)
	if !ok {
		logger.Log.Warn(logger.LogPayload{
			Component: "Notification Service",
			Operation: "Add",
			Message:   "No catalog entry for event type, dropping notification",
			EventType: draft.EventType,
		})
		return nil
	}

	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		logger.Log.Warn(logger.LogPayload{
			Component: "Notification Service",
			Operation: "Add",
			Message:   "No active session, dropping notification",
			EventType: draft.EventType,
		})
		return nil
	}

	record := data.StoredNotification{
		Id:          newNotificationId(),
		UserID:      t.session.UserID,
		UserRole:    t.session.Role,
		Type:        data.NOTIFICATION_TYPE_WEBSOCKET,
		EventType:   draft.EventType,
		Title:       draft.Title,
		Message:     draft.Message,
		Data:        draft.Data,
		IsRead:      false,
		Priority:    entry.Priority,
		Category:    entry.Category,
		CreatedAt:   time.Now(),
		ActionURL:   draft.ActionURL,
		ActionLabel: entry.ActionLabel,
	}

	t.records = append([]data.StoredNotification{record}, t.records...)
	if len(t.records) > t.maxCount {
		t.records = t.records[:t.maxCount]
	}
	userId := t.session.UserID
	t.mu.Unlock()

	logger.Log.Debug(logger.LogPayload{
		Component: "Notification Service",
		Operation: "Add",
		Message:   "Stored notification for userId: " + userId,
		UserId:    userId,
		EventType: draft.EventType,
	})
	t.persist()
	return nil
}

// MarkRead marks the matching record as read, stamping ReadAt. Unknown ids
// are a no-op.
func (t *NotificationServiceImpl) MarkRead(id string) {
	changed := false
	t.mu.Lock()
	for i := range t.records {
		if t.records[i].Id == id && !t.records[i].IsRead {
			now := time.Now()
			t.records[i].IsRead = true
			t.records[i].ReadAt = &now
			changed = true
			break
		}
	}
	t.mu.Unlock()
	if changed {
		t.persist()
	}
}

// MarkUnread clears the read state of the matching record. Unknown ids are
// a no-op.
func (t *NotificationServiceImpl) MarkUnread(id string) {
	changed := false
	t.mu.Lock()
	for i := range t.records {
		if t.records[i].Id == id && t.records[i].IsRead {
			t.records[i].IsRead = false
			t.records[i].ReadAt = nil
			changed = true
			break
		}
	}
	t.mu.Unlock()
	if changed {
		t.persist()
	}
}

// MarkAllRead marks every unread record as read, stamping ReadAt only where
// it is not already set.
func (t *NotificationServiceImpl) MarkAllRead() {
	changed := false
	t.mu.Lock()
	for i := range t.records {
		if !t.records[i].IsRead {
			t.records[i].IsRead = true
			if t.records[i].ReadAt == nil {
				now := time.Now()
				t.records[i].ReadAt = &now
			}
			changed = true
		}
	}
	t.mu.Unlock()
	if changed {
		t.persist()
	}
}

// Delete removes one record. Unknown ids are a no-op.
func (t *NotificationServiceImpl) Delete(id string) {
	changed := false
	t.mu.Lock()
	for i := range t.records {
		if t.records[i].Id == id {
			t.records = append(t.records[:i], t.records[i+1:]...)
			changed = true
			break
		}
	}
	t.mu.Unlock()
	if changed {
		t.persist()
	}
}

// ClearAll empties the collection and removes the persisted blob for the
// current user.
func (t *NotificationServiceImpl) ClearAll() {
	t.mu.Lock()
	t.records = []data.StoredNotification{}
	session := t.session
	t.mu.Unlock()

	if session == nil {
		return
	}
	if err := t.NotificationRepository.Clear(session.UserID); err != nil {
		logger.Log.Warn(logger.LogPayload{
			Component: "Notification Service",
			Operation: "ClearAll",
			Message:   "Failed to clear persisted notifications for userId: " + session.UserID,
			Error:     err,
			UserId:    session.UserID,
		})
	}
}

func (t *NotificationServiceImpl) Query(filter *data.NotificationFilter) []data.StoredNotification {
	t.mu.RLock()
	defer t.mu.RUnlock()

	matched := make([]data.StoredNotification, 0, len(t.records))
	for _, record := range t.records {
		if matches(record, filter) {
			matched = append(matched, record)
		}
	}
	return matched
}

func (t *NotificationServiceImpl) Stats() data.NotificationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := data.NotificationStats{
		Total:      len(t.records),
		ByCategory: map[string]int{},
		ByPriority: map[string]int{},
	}
	dayAgo := time.Now().Add(-24 * time.Hour)
	for _, record := range t.records {
		if !record.IsRead {
			stats.Unread++
		}
		stats.ByCategory[record.Category]++
		stats.ByPriority[record.Priority]++
		if record.CreatedAt.After(dayAgo) {
			stats.RecentCount++
		}
	}
	return stats
}

// prune filters out records older than the retention window. Running it on
// an already-pruned collection is a no-op.
func (t *NotificationServiceImpl) prune(records []data.StoredNotification) ([]data.StoredNotification, int) {
	cutoff := time.Now().AddDate(0, 0, -t.retentionDays)
	kept := make([]data.StoredNotification, 0, len(records))
	for _, record := range records {
		if record.CreatedAt.After(cutoff) {
			kept = append(kept, record)
		}
	}
	return kept, len(records) - len(kept)
}

// persist writes the current collection through to the repository. A write
// failure keeps the in-memory state authoritative and is logged once per
// failure streak rather than on every mutation.
func (t *NotificationServiceImpl) persist() {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return
	}
	userId := t.session.UserID
	snapshot := make([]data.StoredNotification, len(t.records))
	copy(snapshot, t.records)
	alreadyFailed := t.persistFailed
	t.mu.Unlock()

	err := t.NotificationRepository.Save(userId, snapshot)

	t.mu.Lock()
	t.persistFailed = err != nil
	t.mu.Unlock()

	if err != nil && !alreadyFailed {
		logger.Log.Warn(logger.LogPayload{
			Component: "Notification Service",
			Operation: "Persist",
			Message:   "Persistence unavailable, keeping notifications in memory for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
	}
}

func matches(record data.StoredNotification, filter *data.NotificationFilter) bool {
	if filter == nil {
		return true
	}
	if filter.IsRead != nil && record.IsRead != *filter.IsRead {
		return false
	}
	if filter.Category != "" && record.Category != filter.Category {
		return false
	}
	if filter.Priority != "" && record.Priority != filter.Priority {
		return false
	}
	if filter.EventType != "" && record.EventType != filter.EventType {
		return false
	}
	if filter.DateFrom != nil && record.CreatedAt.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && record.CreatedAt.After(*filter.DateTo) {
		return false
	}
	return true
}

// newNotificationId builds a unique id from the creation time plus a random
// suffix, so ids also sort roughly by age.
func newNotificationId() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), utils.GenerateUUID()[:8])
}
