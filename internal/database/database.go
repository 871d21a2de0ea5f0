package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	mongoCollection = "feedback_store"
	mongoDocumentID = "collection"
)

// ConnectMongo connects and pings MongoDB, returning the client and the database
// named in the URI (default "feedback").
func ConnectMongo(mongoURI string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	logger.Info("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Info("✅ Connected to MongoDB")
	return client, client.Database(mongoDatabaseName(mongoURI)), nil
}

// DisconnectMongo closes the client with a bounded wait.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// mongoDatabaseName extracts the database from mongodb://host/name?opts.
func mongoDatabaseName(mongoURI string) string {
	dbName := "feedback"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			dbName = dbPart
		}
	}
	return dbName
}

type mongoSnapshot struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend keeps the document as a single snapshot in the feedback_store collection.
type MongoBackend struct {
	collection *mongo.Collection
}

func NewMongoBackend(db *mongo.Database) *MongoBackend {
	return &MongoBackend{collection: db.Collection(mongoCollection)}
}

func (b *MongoBackend) Name() string { return "mongo" }

func (b *MongoBackend) Read(ctx context.Context) ([]byte, error) {
	var snap mongoSnapshot
	err := b.collection.FindOne(ctx, bson.M{"_id": mongoDocumentID}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return []byte(snap.Payload), nil
}

func (b *MongoBackend) Write(ctx context.Context, data []byte) error {
	snap := mongoSnapshot{
		ID:        mongoDocumentID,
		Payload:   string(data),
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := b.collection.ReplaceOne(ctx, bson.M{"_id": mongoDocumentID}, snap, opts); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
