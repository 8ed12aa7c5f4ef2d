package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConnection opens the database used by the mongo notification
// repository and verifies it with a ping before returning.
func MongoConnection() *mongo.Database {
	cfg := LoadConfig()

	uri := fmt.Sprintf("mongodb://%s:%d", cfg.MongoHost, cfg.MongoPort)
	if cfg.MongoUserName != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoUserName, cfg.MongoPassword, cfg.MongoHost, cfg.MongoPort)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("MongoDB ping failed: %v", err)
	}

	log.Printf("Connected to MongoDB database %s", cfg.MongoDBName)
	return client.Database(cfg.MongoDBName)
}
