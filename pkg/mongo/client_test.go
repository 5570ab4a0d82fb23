package mongo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/biportal/pkg/mongo"
)

func TestConnect_EmptyURL(t *testing.T) {
	t.Parallel()
	_, err := mongo.Connect(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()
	_, err := mongo.Connect(context.Background(), mongo.Config{ConnectionURL: "not-a-mongo-url"})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestConnect_ContextDone(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := mongo.Connect(ctx, mongo.Config{
		ConnectionURL:  "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=50",
		ConnectTimeout: 50 * time.Millisecond,
		RetryAttempts:  3,
		RetryInterval:  time.Minute,
	})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}
