package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BidStatus of a bid within its auction
type BidStatus string

const (
	BidActive  BidStatus = "active"
	BidOutbid  BidStatus = "outbid"
	BidWinning BidStatus = "winning"
)

// Bid represents a user's bid on an auction. Seq is the auction bid_seq the bid
// claimed when it was accepted, so later bids carry higher values.
type Bid struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuctionID              primitive.ObjectID `bson:"auction_id" json:"auction_id"`
	BidderID               primitive.ObjectID `bson:"bidder_id" json:"bidder_id"`
	Amount                 float64            `bson:"amount" json:"amount"`
	BidTime                time.Time          `bson:"bid_time" json:"bid_time"`
	IsAutoBid              bool               `bson:"is_auto_bid" json:"is_auto_bid"`
	MaxAutoBid             *float64           `bson:"max_auto_bid" json:"max_auto_bid"`
	SelectedShippingMethod string             `bson:"selected_shipping_method,omitempty" json:"selected_shipping_method,omitempty"`
	Status                 BidStatus          `bson:"status" json:"status"`
	Seq                    int64              `bson:"seq,omitempty" json:"-"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BidView is a bid enriched with display fields of the bidder or the auction
type BidView struct {
	Bid
	Bidder  *UserSummary    `json:"bidder,omitempty"`
	Auction *AuctionSummary `json:"auction,omitempty"`
}
