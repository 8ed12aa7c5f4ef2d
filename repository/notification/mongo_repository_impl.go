package notificationRepository

import (
	"context"
	"errors"

	"eon-notify/data"
	"eon-notify/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepositoryImpl keeps one document per user in the "notifications"
// collection, holding the whole record array. The document id is the same
// namespace key the other backends use.
type MongoRepositoryImpl struct {
	Db *mongo.Database
}

type notificationDocument struct {
	Id      string                    `bson:"_id"`
	Records []data.StoredNotification `bson:"records"`
}

func NewMongoRepositoryImpl(db *mongo.Database) NotificationRepository {
	return &MongoRepositoryImpl{Db: db}
}

func (t *MongoRepositoryImpl) Load(userId string) ([]data.StoredNotification, error) {
	result := t.Db.Collection("notifications").FindOne(context.Background(), bson.M{"_id": StorageKey(userId)})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []data.StoredNotification{}, nil
		}
		logger.Log.Error(logger.LogPayload{
			Component: "Mongo Notification Repository",
			Operation: "Load",
			Message:   "Failed to fetch notification document for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	var doc notificationDocument
	if err := result.Decode(&doc); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Mongo Notification Repository",
			Operation: "Load",
			Message:   "Failed to decode notification document for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
		return nil, err
	}
	if doc.Records == nil {
		doc.Records = []data.StoredNotification{}
	}
	return doc.Records, nil
}

func (t *MongoRepositoryImpl) Save(userId string, records []data.StoredNotification) error {
	doc := notificationDocument{Id: StorageKey(userId), Records: records}
	_, err := t.Db.Collection("notifications").ReplaceOne(
		context.Background(),
		bson.M{"_id": doc.Id},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Mongo Notification Repository",
			Operation: "Save",
			Message:   "Failed to store notification document for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
	}
	return err
}

func (t *MongoRepositoryImpl) Clear(userId string) error {
	_, err := t.Db.Collection("notifications").DeleteOne(context.Background(), bson.M{"_id": StorageKey(userId)})
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Mongo Notification Repository",
			Operation: "Clear",
			Message:   "Failed to delete notification document for userId: " + userId,
			Error:     err,
			UserId:    userId,
		})
	}
	return err
}
