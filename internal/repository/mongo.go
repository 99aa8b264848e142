package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	auctionsCollection   = "auctions"
	bidsCollection       = "bids"
	watchlistsCollection = "watchlists"
	questionsCollection  = "questions"
	usersCollection      = "users"
)

// MongoOptions configures the MongoDB backed store
type MongoOptions struct {
	URI      string
	Database string
	Timeout  time.Duration
	// Transactions wraps multi-document writes in a transaction. Requires a
	// replica set; without it writes are applied in order behind the bid_seq guard.
	Transactions bool
}

// MongoStore implements Store on top of MongoDB
type MongoStore struct {
	client       *mongo.Client
	transactions bool

	auctions   *mongo.Collection
	bids       *mongo.Collection
	watchlists *mongo.Collection
	questions  *mongo.Collection
	users      *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and creates indexes
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Timeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.Timeout).SetConnectTimeout(opts.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := NewMongoStoreFromClient(client, opts.Database, opts.Transactions)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// NewMongoStoreFromClient wraps an already connected client
func NewMongoStoreFromClient(client *mongo.Client, database string, transactions bool) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:       client,
		transactions: transactions,
		auctions:     db.Collection(auctionsCollection),
		bids:         db.Collection(bidsCollection),
		watchlists:   db.Collection(watchlistsCollection),
		questions:    db.Collection(questionsCollection),
		users:        db.Collection(usersCollection),
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every collection relies on. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.auctions: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "start_price", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		},
		s.bids: {
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "bid_time", Value: -1}}},
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "amount", Value: -1}}},
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "status", Value: 1}, {Key: "seq", Value: -1}}},
			{Keys: bson.D{{Key: "bidder_id", Value: 1}}},
		},
		s.watchlists: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "auction_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "auction_id", Value: 1}}},
		},
		s.questions: {
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "question_date", Value: -1}}},
			{Keys: bson.D{{Key: "question_user_id", Value: 1}}},
		},
		s.users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, specs := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// runTx runs fn inside a transaction when enabled, otherwise directly.
// fn must use the context it is given.
func (s *MongoStore) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
