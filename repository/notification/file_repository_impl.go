package notificationRepository

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"eon-notify/data"
	"eon-notify/logger"
)

// FileRepositoryImpl is the default backend: one JSON blob per user under
// StorageKey(userId).json in a local directory. It is the embedded analog
// of browser local storage.
type FileRepositoryImpl struct {
	Dir string
}

func NewFileRepositoryImpl(dir string) (NotificationRepository, error) {
	if dir == "" {
		return nil, errors.New("storage directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileRepositoryImpl{Dir: dir}, nil
}

func (t *FileRepositoryImpl) path(userId string) string {
	return filepath.Join(t.Dir, StorageKey(userId)+".json")
}

func (t *FileRepositoryImpl) Load(userId string) ([]data.StoredNotification, error) {
	raw, err := os.ReadFile(t.path(userId))
	if err != nil {
		if os.IsNotExist(err) {
			return []data.StoredNotification{}, nil
		}
		logger.Log.Error(logger.LogPayload{
			Component: "File Notification Repository",
			Operation: "Load",
			Message:   "Failed to read notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	var records []data.StoredNotification
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "File Notification Repository",
			Operation: "Load",
			Message:   "Failed to decode notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	return records, nil
}

func (t *FileRepositoryImpl) Save(userId string, records []data.StoredNotification) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	// Write to a temp file first so a failed write never corrupts the blob.
	tmp := t.path(userId) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "File Notification Repository",
			Operation: "Save",
			Message:   "Failed to write notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return err
	}
	return os.Rename(tmp, t.path(userId))
}

func (t *FileRepositoryImpl) Clear(userId string) error {
	err := os.Remove(t.path(userId))
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Error(logger.LogPayload{
			Component: "File Notification Repository",
			Operation: "Clear",
			Message:   "Failed to remove notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return err
	}
	return nil
}
