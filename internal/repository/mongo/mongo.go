// Package mongo is the MongoDB implementation of domain.Database. Posts and
// users live in their own collections; uploaded files are kept in GridFS.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
	filesBucket     = "uploads"
)

// DB wraps a connected client and the selected database.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a pooled client for uri and selects the named database. The
// driver handles reconnects, so one DB is shared for the process lifetime.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &DB{client: client, db: client.Database(database)}, nil
}

// Migrate creates the indexes the repositories rely on. Index creation is
// idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = d.db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

func (d *DB) Users() domain.UserRepository {
	return &UserRepository{coll: d.db.Collection(usersCollection)}
}

func (d *DB) Posts() domain.PostRepository {
	return &PostRepository{coll: d.db.Collection(postsCollection)}
}

func (d *DB) FileStore() domain.FileStore {
	return &fileStore{db: d.db}
}

// Drop removes the selected database. Used by tests for cleanup.
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}
