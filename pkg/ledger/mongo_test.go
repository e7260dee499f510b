package ledger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestBuildMongoFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got := buildMongoFilter(Filter{RecipientID: "7", Statuses: []Status{StatusRead}, Since: &since})
	want := bson.D{
		{Key: "recipient_id", Value: "7"},
		{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{"read"}}}},
		{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, buildMongoFilter(Filter{}))
}

func TestMongoLedger_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URL")
	if uri == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := "delivery_ledger_test_" + time.Now().Format("150405")
	db := client.Database("dispatchkit_test")
	t.Cleanup(func() { _ = db.Collection(coll).Drop(context.Background()) })

	l, err := NewMongoLedger(ctx, db, coll)
	require.NoError(t, err)

	e, err := l.Ensure(ctx, "42", "7")
	require.NoError(t, err)
	assert.Equal(t, StatusNotSent, e.Status)

	_, err = l.RecordRead(ctx, "42", "7")
	assert.ErrorIs(t, err, ErrNotSent)

	_, err = l.RecordSent(ctx, "42", "7", ChannelLive)
	require.NoError(t, err)
	e, err = l.RecordSent(ctx, "42", "7", ChannelPush)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, e.Status)
	assert.Equal(t, []Channel{ChannelLive, ChannelPush}, e.Channels)

	e, err = l.RecordRead(ctx, "42", "7")
	require.NoError(t, err)
	assert.Equal(t, StatusRead, e.Status)

	_, err = l.Ensure(ctx, "42", "7")
	require.NoError(t, err)
	all, err := l.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
