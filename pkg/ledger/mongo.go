package ledger

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultMongoCollection is the collection used when none is configured.
const DefaultMongoCollection = "delivery_ledger"

type mongoEntry struct {
	EventID     string     `bson:"event_id"`
	RecipientID string     `bson:"recipient_id"`
	Status      string     `bson:"status"`
	Channels    []string   `bson:"channels"`
	CreatedAt   time.Time  `bson:"created_at"`
	SentAt      *time.Time `bson:"sent_at,omitempty"`
	ReadAt      *time.Time `bson:"read_at,omitempty"`
}

func (m mongoEntry) toEntry() Entry {
	return Entry{
		EventID:     m.EventID,
		RecipientID: m.RecipientID,
		Status:      Status(m.Status),
		Channels:    normalizeChannels(m.Channels),
		CreatedAt:   m.CreatedAt.UTC(),
		SentAt:      m.SentAt,
		ReadAt:      m.ReadAt,
	}
}

// MongoLedger stores one document per pair. A unique index on
// (event_id, recipient_id) keeps at most one entry per pair and every
// transition is a single conditional document update.
type MongoLedger struct {
	coll *mongo.Collection
	now  func() time.Time
}

// MongoOption configures a MongoLedger.
type MongoOption func(*MongoLedger)

// WithMongoClock overrides the time source.
func WithMongoClock(now func() time.Time) MongoOption {
	return func(l *MongoLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewMongoLedger creates the ledger and makes sure the unique index exists.
func NewMongoLedger(ctx context.Context, db *mongo.Database, collection string, opts ...MongoOption) (*MongoLedger, error) {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	l := &MongoLedger{
		coll: db.Collection(collection),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}

	_, err := l.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "recipient_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_recipient"),
		},
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return l, nil
}

func pairFilter(eventID, recipientID string) bson.D {
	return bson.D{{Key: "event_id", Value: eventID}, {Key: "recipient_id", Value: recipientID}}
}

func (l *MongoLedger) Ensure(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "status", Value: string(StatusNotSent)},
		{Key: "channels", Value: bson.A{}},
		{Key: "created_at", Value: l.now()},
	}}}
	_, err := l.coll.UpdateOne(ctx, pairFilter(eventID, recipientID), update, options.UpdateOne().SetUpsert(true))
	// Two concurrent upserts may race on the unique index; the loser just reads.
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return Entry{}, errors.Join(ErrStorage, err)
	}
	return l.Get(ctx, eventID, recipientID)
}

func (l *MongoLedger) RecordSent(ctx context.Context, eventID, recipientID string, ch Channel) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}
	if !ch.Valid() {
		return Entry{}, ErrInvalidChannel
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// First writer flips not_sent → sent.
	filter := append(pairFilter(eventID, recipientID), bson.E{Key: "status", Value: string(StatusNotSent)})
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "status", Value: string(StatusSent)}, {Key: "sent_at", Value: l.now()}}},
		{Key: "$addToSet", Value: bson.D{{Key: "channels", Value: string(ch)}}},
	}
	entry, err := l.findOneAndUpdate(ctx, filter, update, after)
	if err == nil || !errors.Is(err, ErrEntryNotFound) {
		return entry, err
	}

	// Already sent or read: only merge the channel.
	update = bson.D{{Key: "$addToSet", Value: bson.D{{Key: "channels", Value: string(ch)}}}}
	return l.findOneAndUpdate(ctx, pairFilter(eventID, recipientID), update, after)
}

func (l *MongoLedger) RecordRead(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	filter := append(pairFilter(eventID, recipientID), bson.E{Key: "status", Value: string(StatusSent)})
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(StatusRead)},
		{Key: "read_at", Value: l.now()},
	}}}
	entry, err := l.findOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err == nil || !errors.Is(err, ErrEntryNotFound) {
		return entry, err
	}

	current, err := l.Get(ctx, eventID, recipientID)
	if err != nil {
		return Entry{}, err
	}
	if current.Status == StatusRead {
		return current, nil
	}
	return current, ErrNotSent
}

func (l *MongoLedger) Get(ctx context.Context, eventID, recipientID string) (Entry, error) {
	var doc mongoEntry
	if err := l.coll.FindOne(ctx, pairFilter(eventID, recipientID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, errors.Join(ErrStorage, err)
	}
	return doc.toEntry(), nil
}

func (l *MongoLedger) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "event_id", Value: 1},
		{Key: "recipient_id", Value: 1},
	})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cur, err := l.coll.Find(ctx, buildMongoFilter(filter), opts)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []mongoEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.toEntry())
	}
	return entries, nil
}

func (l *MongoLedger) findOneAndUpdate(ctx context.Context, filter, update bson.D, opts *options.FindOneAndUpdateOptionsBuilder) (Entry, error) {
	var doc mongoEntry
	err := l.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, errors.Join(ErrStorage, err)
	}
	return doc.toEntry(), nil
}

func buildMongoFilter(f Filter) bson.D {
	filter := bson.D{}
	if f.RecipientID != "" {
		filter = append(filter, bson.E{Key: "recipient_id", Value: f.RecipientID})
	}
	if f.EventID != "" {
		filter = append(filter, bson.E{Key: "event_id", Value: f.EventID})
	}
	if len(f.Statuses) > 0 {
		statuses := make(bson.A, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		filter = append(filter, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: statuses}}})
	}
	if f.Since != nil {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: *f.Since}}})
	}
	return filter
}
