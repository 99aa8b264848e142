//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

package repository

import (
	"context"

	"auction-marketplace/internal/models"
	"auction-marketplace/internal/search"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuctionRepository defines the auction storage interface
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction models.Auction) (models.Auction, error)
	GetAuction(ctx context.Context, id primitive.ObjectID) (models.Auction, error)
	// IncrementViews bumps view_count and returns the updated auction
	IncrementViews(ctx context.Context, id primitive.ObjectID) (models.Auction, error)
	FindAuctions(ctx context.Context, query search.Query) ([]models.Auction, error)
	// DeleteAuction removes the auction together with its bids, watches and questions
	DeleteAuction(ctx context.Context, id primitive.ObjectID) error
}

// AcceptBidParams carries everything needed to accept a bid as one unit
type AcceptBidParams struct {
	Bid models.Bid
	// ExpectedSeq is the auction's bid_seq observed when the bid was validated
	ExpectedSeq int64
	ReserveMet  bool
}

// BidFilter narrows ListBids. Nil fields are ignored.
type BidFilter struct {
	AuctionID *primitive.ObjectID
	BidderID  *primitive.ObjectID
}

// BidRepository defines the bid ledger storage interface
type BidRepository interface {
	// GetWinningBid returns the bid currently marked winning, or ErrNoBids
	GetWinningBid(ctx context.Context, auctionID primitive.ObjectID) (models.Bid, error)
	// GetHighestBid returns the bid with the largest amount, or ErrNoBids
	GetHighestBid(ctx context.Context, auctionID primitive.ObjectID) (models.Bid, error)
	// AcceptBid stores a new winning bid, demotes the previous winner, and refreshes
	// current_bid, bid_count and reserve_met on the auction. It fails with
	// ErrConcurrentUpdate when the auction's bid_seq no longer equals ExpectedSeq,
	// in which case nothing is written.
	AcceptBid(ctx context.Context, params AcceptBidParams) (models.Bid, error)
	// ListBids returns matching bids, newest first
	ListBids(ctx context.Context, filter BidFilter) ([]models.Bid, error)
}

// WatchlistRepository defines the watchlist storage interface. Add and remove
// return the recomputed watcher count of the auction.
type WatchlistRepository interface {
	FindWatch(ctx context.Context, userID, auctionID primitive.ObjectID) (models.Watchlist, error)
	AddWatch(ctx context.Context, watch models.Watchlist) (models.Watchlist, int64, error)
	RemoveWatch(ctx context.Context, userID, auctionID primitive.ObjectID) (int64, error)
	CountWatchers(ctx context.Context, auctionID primitive.ObjectID) (int64, error)
	// ListWatches returns the user's watches, most recently added first
	ListWatches(ctx context.Context, userID primitive.ObjectID) ([]models.Watchlist, error)
}

// QuestionFilter narrows ListQuestions. A zero Limit means no limit.
type QuestionFilter struct {
	AuctionID  *primitive.ObjectID
	UserID     *primitive.ObjectID
	PublicOnly bool
	Limit      int64
	Offset     int64
}

// QuestionRepository defines the question storage interface
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question models.Question) (models.Question, error)
	GetQuestion(ctx context.Context, id primitive.ObjectID) (models.Question, error)
	UpdateAnswer(ctx context.Context, id primitive.ObjectID, answer models.Answer) (models.Question, error)
	// ListQuestions returns one page of matching questions, newest first, and the
	// total number of matches
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]models.Question, int64, error)
	DeleteQuestion(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines the user storage interface
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	// GetUsers returns the users that exist among ids, keyed by id
	GetUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Store is the full persistence surface of the marketplace
type Store interface {
	AuctionRepository
	BidRepository
	WatchlistRepository
	QuestionRepository
	UserRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
