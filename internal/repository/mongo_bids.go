package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) findOneBid(ctx context.Context, op string, filter, sort bson.D) (models.Bid, error) {
	var bid models.Bid
	err := s.bids.FindOne(ctx, filter, options.FindOne().SetSort(sort)).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Bid{}, fmt.Errorf("%s: %w", op, marketerrors.ErrNoBids)
		}
		return models.Bid{}, fmt.Errorf("%s: %w", op, err)
	}
	return bid, nil
}

func (s *MongoStore) GetWinningBid(ctx context.Context, auctionID primitive.ObjectID) (models.Bid, error) {
	return s.findOneBid(ctx,
		"get winning bid for auction "+auctionID.Hex(),
		bson.D{{Key: "auction_id", Value: auctionID}, {Key: "status", Value: models.BidWinning}},
		bson.D{{Key: "seq", Value: -1}, {Key: "bid_time", Value: -1}},
	)
}

func (s *MongoStore) GetHighestBid(ctx context.Context, auctionID primitive.ObjectID) (models.Bid, error) {
	return s.findOneBid(ctx,
		"get highest bid for auction "+auctionID.Hex(),
		bson.D{{Key: "auction_id", Value: auctionID}},
		bson.D{{Key: "amount", Value: -1}, {Key: "bid_time", Value: 1}},
	)
}

// bidSeqFilter matches the expected sequence. Documents written before the
// counter existed have no bid_seq field and count as 0.
func bidSeqFilter(expected int64) bson.E {
	if expected == 0 {
		return bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "bid_seq", Value: 0}},
			bson.D{{Key: "bid_seq", Value: bson.D{{Key: "$exists", Value: false}}}},
		}}
	}
	return bson.E{Key: "bid_seq", Value: expected}
}

// AcceptBid claims the next bid_seq with a conditional update, inserts the bid
// as winning and demotes every winner with a lower seq. Without transactions
// these steps can interleave with a later bid: the seq order keeps the later
// bid the only winner, and a failed insert puts the previous price back.
func (s *MongoStore) AcceptBid(ctx context.Context, p AcceptBidParams) (models.Bid, error) {
	ts := now()
	err := s.runTx(ctx, func(ctx context.Context) error {
		bid := p.Bid
		if bid.ID.IsZero() {
			bid.ID = primitive.NewObjectID()
		}
		bid.Status = models.BidWinning
		bid.Seq = p.ExpectedSeq + 1
		bid.CreatedAt, bid.UpdatedAt = ts, ts
		auctionHex := bid.AuctionID.Hex()

		prev, err := s.claimBidSeq(ctx, bid, p, ts)
		if err != nil {
			return err
		}

		if _, err := s.bids.InsertOne(ctx, bid); err != nil {
			err = fmt.Errorf("insert bid for auction %s: %w", auctionHex, err)
			if !s.transactions {
				err = errors.Join(err, s.restorePrice(ctx, bid, prev))
			}
			return err
		}

		_, err = s.bids.UpdateMany(ctx,
			bson.D{
				{Key: "auction_id", Value: bid.AuctionID},
				{Key: "status", Value: models.BidWinning},
				{Key: "$or", Value: bson.A{
					bson.D{{Key: "seq", Value: bson.D{{Key: "$lt", Value: bid.Seq}}}},
					bson.D{{Key: "seq", Value: bson.D{{Key: "$exists", Value: false}}}},
				}},
			},
			bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: models.BidOutbid}, {Key: "updatedAt", Value: ts}}}},
		)
		if err != nil {
			return fmt.Errorf("demote previous winner of auction %s: %w", auctionHex, err)
		}

		if !s.transactions {
			if err := s.yieldToLaterBid(ctx, &bid, ts); err != nil {
				return err
			}
		}
		if err := s.recountBids(ctx, bid.AuctionID); err != nil {
			return err
		}
		p.Bid = bid
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}
	return p.Bid, nil
}

// auctionPrice is the part of an auction a bid overwrites
type auctionPrice struct {
	CurrentBid float64 `bson:"current_bid"`
	ReserveMet bool    `bson:"reserve_met"`
}

// claimBidSeq moves the auction from expected to expected+1 and returns the
// price it had before.
func (s *MongoStore) claimBidSeq(ctx context.Context, bid models.Bid, p AcceptBidParams, ts time.Time) (auctionPrice, error) {
	auctionHex := bid.AuctionID.Hex()

	var prev auctionPrice
	err := s.auctions.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: bid.AuctionID}, bidSeqFilter(p.ExpectedSeq)},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "current_bid", Value: bid.Amount},
				{Key: "reserve_met", Value: p.ReserveMet},
				{Key: "updatedAt", Value: ts},
			}},
			{Key: "$inc", Value: bson.D{{Key: "bid_seq", Value: 1}}},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.D{{Key: "current_bid", Value: 1}, {Key: "reserve_met", Value: 1}}),
	).Decode(&prev)
	if err == nil {
		return prev, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return prev, fmt.Errorf("accept bid for auction %s: %w", auctionHex, err)
	}

	n, err := s.auctions.CountDocuments(ctx, bson.D{{Key: "_id", Value: bid.AuctionID}})
	if err != nil {
		return prev, fmt.Errorf("accept bid for auction %s: %w", auctionHex, err)
	}
	if n == 0 {
		return prev, fmt.Errorf("accept bid for auction %s: %w", auctionHex, marketerrors.ErrAuctionNotFound)
	}
	return prev, fmt.Errorf("accept bid for auction %s: %w", auctionHex, marketerrors.ErrConcurrentUpdate)
}

// restorePrice undoes a claim whose bid was never stored. A later claim owns
// the price, so the auction is only touched while it still holds bid's seq.
func (s *MongoStore) restorePrice(ctx context.Context, bid models.Bid, prev auctionPrice) error {
	_, err := s.auctions.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: bid.AuctionID}, {Key: "bid_seq", Value: bid.Seq}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "current_bid", Value: prev.CurrentBid},
			{Key: "reserve_met", Value: prev.ReserveMet},
		}}},
	)
	if err != nil {
		return fmt.Errorf("restore price of auction %s: %w", bid.AuctionID.Hex(), err)
	}
	return nil
}

// yieldToLaterBid demotes bid when another bid claimed a higher seq meanwhile.
// That bid may have run its demotion before bid was inserted.
func (s *MongoStore) yieldToLaterBid(ctx context.Context, bid *models.Bid, ts time.Time) error {
	var current struct {
		BidSeq int64 `bson:"bid_seq"`
	}
	err := s.auctions.FindOne(ctx,
		bson.D{{Key: "_id", Value: bid.AuctionID}},
		options.FindOne().SetProjection(bson.D{{Key: "bid_seq", Value: 1}}),
	).Decode(&current)
	if err != nil {
		return fmt.Errorf("read bid_seq of auction %s: %w", bid.AuctionID.Hex(), err)
	}
	if current.BidSeq <= bid.Seq {
		return nil
	}

	_, err = s.bids.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: bid.ID}, {Key: "status", Value: models.BidWinning}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: models.BidOutbid}, {Key: "updatedAt", Value: ts}}}},
	)
	if err != nil {
		return fmt.Errorf("demote bid %s: %w", bid.ID.Hex(), err)
	}
	bid.Status = models.BidOutbid
	return nil
}

// recountBids refreshes bid_count from the ledger. Bids are only ever added,
// so $max keeps a slower recount from overwriting a newer one.
func (s *MongoStore) recountBids(ctx context.Context, auctionID primitive.ObjectID) error {
	count, err := s.bids.CountDocuments(ctx, bson.D{{Key: "auction_id", Value: auctionID}})
	if err != nil {
		return fmt.Errorf("count bids for auction %s: %w", auctionID.Hex(), err)
	}
	_, err = s.auctions.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: auctionID}},
		bson.D{{Key: "$max", Value: bson.D{{Key: "bid_count", Value: count}}}},
	)
	if err != nil {
		return fmt.Errorf("update bid count of auction %s: %w", auctionID.Hex(), err)
	}
	return nil
}

func (s *MongoStore) ListBids(ctx context.Context, f BidFilter) ([]models.Bid, error) {
	filter := bson.D{}
	if f.AuctionID != nil {
		filter = append(filter, bson.E{Key: "auction_id", Value: *f.AuctionID})
	}
	if f.BidderID != nil {
		filter = append(filter, bson.E{Key: "bidder_id", Value: *f.BidderID})
	}

	cursor, err := s.bids.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "bid_time", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer cursor.Close(ctx)

	bids := []models.Bid{}
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("decode bids: %w", err)
	}
	return bids, nil
}
