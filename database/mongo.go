package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"qchat-service/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	MongoClient *mongo.Client
	Mongo       *mongo.Database
	GridFS      *gridfs.Bucket
)

func MongoConnect() {
	uri := config.Config("MONGO_URI")
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%s", config.Config("MONGO_HOST"), config.Config("MONGO_PORT"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		panic(fmt.Sprintf("failed to connect to MongoDB: %v", err))
	}

	if err := client.Ping(ctx, nil); err != nil {
		panic(fmt.Sprintf("failed to ping MongoDB: %v", err))
	}

	MongoClient = client
	Mongo = client.Database(config.Config("MONGO_DB"))

	GridFS, err = gridfs.NewBucket(Mongo, options.GridFSBucket().SetName("files"))
	if err != nil {
		panic(fmt.Sprintf("failed to create GridFS bucket: %v", err))
	}

	log.Printf("Connection opened to MongoDB")
}

func MongoDisconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	MongoClient.Disconnect(ctx)
}
