package repository

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func watchFilter(userID, auctionID primitive.ObjectID) bson.D {
	return bson.D{{Key: "user_id", Value: userID}, {Key: "auction_id", Value: auctionID}}
}

func (s *MongoStore) FindWatch(ctx context.Context, userID, auctionID primitive.ObjectID) (models.Watchlist, error) {
	var w models.Watchlist
	if err := s.watchlists.FindOne(ctx, watchFilter(userID, auctionID)).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Watchlist{}, fmt.Errorf("find watch user %s auction %s: %w", userID.Hex(), auctionID.Hex(), marketerrors.ErrWatchNotFound)
		}
		return models.Watchlist{}, fmt.Errorf("find watch: %w", err)
	}
	return w, nil
}

// refreshWatchers recounts the live watch rows and stores the result on the auction
func (s *MongoStore) refreshWatchers(ctx context.Context, auctionID primitive.ObjectID) (int64, error) {
	count, err := s.watchlists.CountDocuments(ctx, bson.D{{Key: "auction_id", Value: auctionID}})
	if err != nil {
		return 0, fmt.Errorf("count watchers of auction %s: %w", auctionID.Hex(), err)
	}
	_, err = s.auctions.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: auctionID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "watchers_count", Value: count}, {Key: "updatedAt", Value: now()}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("update watchers of auction %s: %w", auctionID.Hex(), err)
	}
	return count, nil
}

func (s *MongoStore) AddWatch(ctx context.Context, w models.Watchlist) (models.Watchlist, int64, error) {
	ts := now()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.AddedDate.IsZero() {
		w.AddedDate = ts
	}
	w.CreatedAt, w.UpdatedAt = ts, ts

	var count int64
	err := s.runTx(ctx, func(ctx context.Context) error {
		n, err := s.auctions.CountDocuments(ctx, bson.D{{Key: "_id", Value: w.AuctionID}})
		if err != nil {
			return fmt.Errorf("add watch: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("add watch auction %s: %w", w.AuctionID.Hex(), marketerrors.ErrAuctionNotFound)
		}

		if _, err := s.watchlists.InsertOne(ctx, w); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("add watch user %s auction %s: %w", w.UserID.Hex(), w.AuctionID.Hex(), marketerrors.ErrAlreadyWatching)
			}
			return fmt.Errorf("add watch: %w", err)
		}

		count, err = s.refreshWatchers(ctx, w.AuctionID)
		return err
	})
	if err != nil {
		return models.Watchlist{}, 0, err
	}
	return w, count, nil
}

func (s *MongoStore) RemoveWatch(ctx context.Context, userID, auctionID primitive.ObjectID) (int64, error) {
	var count int64
	err := s.runTx(ctx, func(ctx context.Context) error {
		res, err := s.watchlists.DeleteOne(ctx, watchFilter(userID, auctionID))
		if err != nil {
			return fmt.Errorf("remove watch: %w", err)
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("remove watch user %s auction %s: %w", userID.Hex(), auctionID.Hex(), marketerrors.ErrWatchNotFound)
		}

		count, err = s.refreshWatchers(ctx, auctionID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *MongoStore) CountWatchers(ctx context.Context, auctionID primitive.ObjectID) (int64, error) {
	count, err := s.watchlists.CountDocuments(ctx, bson.D{{Key: "auction_id", Value: auctionID}})
	if err != nil {
		return 0, fmt.Errorf("count watchers of auction %s: %w", auctionID.Hex(), err)
	}
	return count, nil
}

func (s *MongoStore) ListWatches(ctx context.Context, userID primitive.ObjectID) ([]models.Watchlist, error) {
	cursor, err := s.watchlists.Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "added_date", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list watches of user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	watches := []models.Watchlist{}
	if err := cursor.All(ctx, &watches); err != nil {
		return nil, fmt.Errorf("decode watches: %w", err)
	}
	return watches, nil
}
