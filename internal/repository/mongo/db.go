package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// ConnectDB opens a client against the given MongoDB URI and verifies the
// primary is reachable before handing it back. Plan and metrics documents can
// be large, so a dead connection should fail here rather than on the first
// upload.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	// Connect returns lazily; ping with its own shorter deadline to confirm
	// the server actually answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		discCtx, discCancel := context.WithTimeout(context.Background(), pingTimeout)
		defer discCancel()
		if derr := client.Disconnect(discCtx); derr != nil {
			log.Printf("WARN: Failed to close unreachable MongoDB client: %v", derr)
		}
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Println("INFO: MongoDB connection established.")
	return client, nil
}

// DisconnectDB closes the client, waiting up to the connect timeout for
// in-flight operations to drain.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}
