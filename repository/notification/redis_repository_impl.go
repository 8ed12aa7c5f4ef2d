package notificationRepository

import (
	"context"
	"encoding/json"
	"errors"

	"eon-notify/data"
	"eon-notify/logger"

	"github.com/redis/go-redis/v9"
)

// RedisRepositoryImpl stores each user's collection under the key
// "notifications_{userId}", mirroring the local-storage layout so a blob
// written by one backend is readable by another.
type RedisRepositoryImpl struct {
	Rdb *redis.Client
}

func NewRedisRepositoryImpl(rdb *redis.Client) NotificationRepository {
	return &RedisRepositoryImpl{Rdb: rdb}
}

func (t *RedisRepositoryImpl) Load(userId string) ([]data.StoredNotification, error) {
	val, err := t.Rdb.Get(context.Background(), StorageKey(userId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []data.StoredNotification{}, nil
		}
		logger.Log.Error(logger.LogPayload{
			Component: "Redis Notification Repository",
			Operation: "Load",
			Message:   "Failed to fetch notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	var records []data.StoredNotification
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Redis Notification Repository",
			Operation: "Load",
			Message:   "Failed to decode notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	return records, nil
}

func (t *RedisRepositoryImpl) Save(userId string, records []data.StoredNotification) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := t.Rdb.Set(context.Background(), StorageKey(userId), raw, 0).Err(); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Redis Notification Repository",
			Operation: "Save",
			Message:   "Failed to store notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return err
	}
	return nil
}

func (t *RedisRepositoryImpl) Clear(userId string) error {
	if err := t.Rdb.Del(context.Background(), StorageKey(userId)).Err(); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Redis Notification Repository",
			Operation: "Clear",
			Message:   "Failed to delete notification blob for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return err
	}
	return nil
}
