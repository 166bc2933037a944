package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const appName = "storefront"

// MongoOptions tunes the driver pool. Zero values fall back to DefaultMongoOptions.
type MongoOptions struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

var DefaultMongoOptions = MongoOptions{
	MaxPoolSize:            100,
	MinPoolSize:            10,
	ConnectTimeout:         10 * time.Second,
	ServerSelectionTimeout: 5 * time.Second,
}

func (o MongoOptions) withDefaults() MongoOptions {
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = DefaultMongoOptions.MaxPoolSize
	}
	if o.MinPoolSize > o.MaxPoolSize {
		o.MinPoolSize = o.MaxPoolSize
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultMongoOptions.ConnectTimeout
	}
	if o.ServerSelectionTimeout <= 0 {
		o.ServerSelectionTimeout = DefaultMongoOptions.ServerSelectionTimeout
	}
	return o
}

func clientOptions(uri string, o MongoOptions) *options.ClientOptions {
	o = o.withDefaults()
	return options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetConnectTimeout(o.ConnectTimeout).
		SetServerSelectionTimeout(o.ServerSelectionTimeout).
		SetMaxPoolSize(o.MaxPoolSize).
		SetMinPoolSize(o.MinPoolSize)
}

// ConnectMongoDB opens the pool and fails fast if the primary is unreachable.
func ConnectMongoDB(ctx context.Context, uri, database string, o MongoOptions) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, clientOptions(uri, o))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
