package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Watchlist joins a user to an auction they track. (UserID, AuctionID) is unique.
type Watchlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	AuctionID primitive.ObjectID `bson:"auction_id" json:"auction_id"`
	AddedDate time.Time          `bson:"added_date" json:"added_date"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WatchlistView carries the watched auction alongside the join record
type WatchlistView struct {
	Watchlist
	Auction *Auction `json:"auction,omitempty"`
}
