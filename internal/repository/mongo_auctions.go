package repository

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func decodeAuctions(ctx context.Context, cursor *mongo.Cursor) ([]models.Auction, error) {
	auctions := []models.Auction{}
	if err := cursor.All(ctx, &auctions); err != nil {
		return nil, err
	}
	for i := range auctions {
		auctions[i].Normalize()
	}
	return auctions, nil
}

func (s *MongoStore) CreateAuction(ctx context.Context, a models.Auction) (models.Auction, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Normalize()
	ts := now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = ts
	}
	a.UpdatedAt = ts

	if _, err := s.auctions.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Auction{}, fmt.Errorf("create auction %s: %w: duplicate id", a.ID.Hex(), marketerrors.ErrConflict)
		}
		return models.Auction{}, fmt.Errorf("create auction: %w", err)
	}
	return a, nil
}

func (s *MongoStore) GetAuction(ctx context.Context, id primitive.ObjectID) (models.Auction, error) {
	var a models.Auction
	if err := s.auctions.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Auction{}, fmt.Errorf("get auction %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
		}
		return models.Auction{}, fmt.Errorf("get auction %s: %w", id.Hex(), err)
	}
	a.Normalize()
	return a, nil
}

func (s *MongoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (models.Auction, error) {
	var a models.Auction
	err := s.auctions.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "view_count", Value: 1}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Auction{}, fmt.Errorf("increment views %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
		}
		return models.Auction{}, fmt.Errorf("increment views %s: %w", id.Hex(), err)
	}
	a.Normalize()
	return a, nil
}

// FindAuctions runs a find for plain listings and an aggregation for scored ones
func (s *MongoStore) FindAuctions(ctx context.Context, query search.Query) ([]models.Auction, error) {
	if query.Empty() {
		return []models.Auction{}, nil
	}

	var (
		cursor *mongo.Cursor
		err    error
	)
	if query.Scored() {
		cursor, err = s.auctions.Aggregate(ctx, query.Pipeline())
	} else {
		opts := options.Find().SetSort(query.SortSpec())
		if query.Limit > 0 {
			opts.SetLimit(query.Limit)
		}
		cursor, err = s.auctions.Find(ctx, query.Filter(), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("find auctions: %w", err)
	}
	defer cursor.Close(ctx)

	auctions, err := decodeAuctions(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("decode auctions: %w", err)
	}
	return auctions, nil
}

func (s *MongoStore) DeleteAuction(ctx context.Context, id primitive.ObjectID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		res, err := s.auctions.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return fmt.Errorf("delete auction %s: %w", id.Hex(), err)
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("delete auction %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
		}

		byAuction := bson.D{{Key: "auction_id", Value: id}}
		for _, coll := range []*mongo.Collection{s.bids, s.watchlists, s.questions} {
			if _, err := coll.DeleteMany(ctx, byAuction); err != nil {
				return fmt.Errorf("delete %s of auction %s: %w", coll.Name(), id.Hex(), err)
			}
		}
		return nil
	})
}
