// Package mongodb provides the MongoDB client used for guard audit events.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripwise/travel-agent/internal/core/docdb"
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client      *mongo.Client
	guardEvents *mongo.Collection
}

var _ docdb.Client = (*Client)(nil)

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
	// EventRetention expires guard events after this long. Zero keeps them.
	EventRetention time.Duration
}

// NewClient connects, pings and ensures the guard event indexes.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c := &Client{
		client:      client,
		guardEvents: client.Database(config.DatabaseName).Collection(docdb.GuardEventsCollection),
	}
	if err := c.EnsureIndexes(ctx, config.EventRetention); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return c, nil
}

// GuardEvents returns the guard events collection.
func (c *Client) GuardEvents() docdb.Collection {
	return NewCollection(c.guardEvents)
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

// EnsureIndexes creates the guard event indexes.
func (c *Client) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	createdAt := options.Index().SetName("idx_created_at")
	if retention > 0 {
		createdAt.SetExpireAfterSeconds(int32(retention.Seconds()))
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_session_created"),
		},
		{
			Keys: bson.D{
				{Key: "verdict", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().SetName("idx_verdict_category"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: createdAt,
		},
	}

	if _, err := c.guardEvents.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create guard event indexes: %w", err)
	}
	return nil
}
