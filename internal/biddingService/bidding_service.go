package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/search"
	"auction-marketplace/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultMaxRetries     = 5
	DefaultInitialBackoff = 10 * time.Millisecond
)

// Repository is the storage the bidding service reads and writes
type Repository interface {
	repository.AuctionRepository
	repository.BidRepository
	repository.UserRepository
}

// PlaceBidInput is a bid as submitted by a bidder
type PlaceBidInput struct {
	AuctionID      string
	BidderID       string
	Amount         float64
	IsAutoBid      bool
	MaxAutoBid     *float64
	ShippingMethod string
}

// Options tune how lost concurrent updates are retried
type Options struct {
	MaxRetries     int
	InitialBackoff time.Duration
	Now            func() time.Time
}

type Option func(*Options)

// WithMaxRetries sets how often a bid that lost a concurrent update is retried
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithInitialBackoff sets the first retry delay; later delays grow exponentially
func WithInitialBackoff(d time.Duration) Option {
	return func(o *Options) {
		o.InitialBackoff = d
	}
}

// WithClock replaces the wall clock used for end dates and bid times
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo    Repository
	options Options
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo Repository, opts ...Option) *BiddingService {
	options := Options{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		Now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &BiddingService{
		repo:    repo,
		options: options,
	}
}

// PlaceBid validates a bid against the auction and accepts it together with
// the auction aggregates. Validation runs again on every retry, so a bid never
// succeeds against a stale current highest.
func (s *BiddingService) PlaceBid(ctx context.Context, in PlaceBidInput) (models.BidView, error) {
	auctionID, bidderID, err := validateInput(in)
	if err != nil {
		return models.BidView{}, err
	}

	operation := func() (models.Bid, error) {
		bid, err := s.tryPlaceBid(ctx, auctionID, bidderID, in)
		if err != nil && !errors.Is(err, marketerrors.ErrConcurrentUpdate) {
			return models.Bid{}, backoff.Permanent(err)
		}
		return bid, err
	}
	notify := func(err error, wait time.Duration) {
		utils.Debug("retrying bid after concurrent update", map[string]any{
			"auction_id": in.AuctionID,
			"bidder_id":  in.BidderID,
			"amount":     in.Amount,
			"wait":       wait.String(),
		})
	}

	bid, err := backoff.RetryNotifyWithData(operation, s.backOff(ctx), notify)
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: failed to place bid on auction %s by user %s: %w", in.AuctionID, in.BidderID, err)
	}

	views, err := s.withBidders(ctx, []models.Bid{bid})
	if err != nil {
		return models.BidView{}, err
	}
	return views[0], nil
}

func (s *BiddingService) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.options.InitialBackoff
	exp.MaxInterval = 50 * s.options.InitialBackoff
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.options.MaxRetries)), ctx)
}

// validateInput checks input validity that does not depend on stored state
func validateInput(in PlaceBidInput) (auctionID, bidderID primitive.ObjectID, err error) {
	if in.AuctionID == "" || in.BidderID == "" {
		return auctionID, bidderID, fmt.Errorf("service: %w - auction_id, bidder_id, and amount are required", marketerrors.ErrInvalidBid)
	}
	if auctionID, err = models.ParseID("auction_id", in.AuctionID); err != nil {
		return auctionID, bidderID, fmt.Errorf("service: %w", err)
	}
	if bidderID, err = models.ParseID("bidder_id", in.BidderID); err != nil {
		return auctionID, bidderID, fmt.Errorf("service: %w", err)
	}
	if in.Amount <= 0 {
		return auctionID, bidderID, fmt.Errorf("service: %w - non-positive bid amount", marketerrors.ErrInvalidBid)
	}
	if in.MaxAutoBid != nil && *in.MaxAutoBid < in.Amount {
		return auctionID, bidderID, fmt.Errorf("service: %w - max_auto_bid is below the bid amount", marketerrors.ErrInvalidBid)
	}
	return auctionID, bidderID, nil
}

// tryPlaceBid is one read, validate and accept round
func (s *BiddingService) tryPlaceBid(ctx context.Context, auctionID, bidderID primitive.ObjectID, in PlaceBidInput) (models.Bid, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}

	now := s.options.Now()
	if auction.Status != models.AuctionActive {
		return models.Bid{}, marketerrors.ErrAuctionNotActive
	}
	if auction.EndDate != nil && now.After(*auction.EndDate) {
		return models.Bid{}, marketerrors.ErrAuctionEnded
	}

	minimum, err := s.minimumBid(ctx, auction)
	if err != nil {
		return models.Bid{}, err
	}
	if in.Amount <= minimum {
		return models.Bid{}, fmt.Errorf("%w - bid must be higher than current bid of $%.2f", marketerrors.ErrBidTooLow, minimum)
	}

	shipping := strings.TrimSpace(in.ShippingMethod)
	if shipping != "" && !auction.HasShippingMethod(shipping) {
		return models.Bid{}, fmt.Errorf("%w - shipping method %q is not offered for this auction", marketerrors.ErrInvalidBid, shipping)
	}

	return s.repo.AcceptBid(ctx, repository.AcceptBidParams{
		Bid: models.Bid{
			AuctionID:              auctionID,
			BidderID:               bidderID,
			Amount:                 in.Amount,
			BidTime:                now,
			IsAutoBid:              in.IsAutoBid,
			MaxAutoBid:             in.MaxAutoBid,
			SelectedShippingMethod: shipping,
		},
		ExpectedSeq: auction.BidSeq,
		ReserveMet:  in.Amount >= auction.ReservePrice,
	})
}

// minimumBid is the winning bid's amount, or the start price before the first bid
func (s *BiddingService) minimumBid(ctx context.Context, auction models.Auction) (float64, error) {
	minimum := auction.StartPrice

	winning, err := s.repo.GetWinningBid(ctx, auction.ID)
	switch {
	case err == nil:
		minimum = winning.Amount
	case errors.Is(err, marketerrors.ErrNoBids):
	default:
		return 0, fmt.Errorf("failed to check winning bid: %w", err)
	}

	// current_bid is authoritative once a bid was accepted through the guard
	if auction.BidSeq > 0 && auction.CurrentBid > minimum {
		minimum = auction.CurrentBid
	}
	return minimum, nil
}

// GetBidsForAuction returns all bids for an auction, newest first, with bidder details
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.BidView, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	bids, err := s.repo.ListBids(ctx, repository.BidFilter{AuctionID: &id})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return s.withBidders(ctx, bids)
}

// GetHighestBid returns the largest bid for an auction, or ErrNoBids
func (s *BiddingService) GetHighestBid(ctx context.Context, auctionID string) (models.BidView, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: %w", err)
	}

	bid, err := s.repo.GetHighestBid(ctx, id)
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: failed to get highest bid for auction %s: %w", auctionID, err)
	}

	views, err := s.withBidders(ctx, []models.Bid{bid})
	if err != nil {
		return models.BidView{}, err
	}
	return views[0], nil
}

// GetBidsByUser returns every bid a user placed, newest first, with auction details
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID string) ([]models.BidView, error) {
	id, err := models.ParseID("user id", userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	bids, err := s.repo.ListBids(ctx, repository.BidFilter{BidderID: &id})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", userID, err)
	}
	return s.withAuctions(ctx, bids)
}

// GetUserBidsForAuction returns a user's bids on one auction, newest first
func (s *BiddingService) GetUserBidsForAuction(ctx context.Context, userID, auctionID string) ([]models.BidView, error) {
	uid, err := models.ParseID("user id", userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	aid, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	bids, err := s.repo.ListBids(ctx, repository.BidFilter{AuctionID: &aid, BidderID: &uid})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids of user %s for auction %s: %w", userID, auctionID, err)
	}
	return s.withBidders(ctx, bids)
}

func (s *BiddingService) withBidders(ctx context.Context, bids []models.Bid) ([]models.BidView, error) {
	if len(bids) == 0 {
		return []models.BidView{}, nil
	}
	ids := lo.Uniq(lo.Map(bids, func(b models.Bid, _ int) primitive.ObjectID { return b.BidderID }))
	users, err := s.repo.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load bidders: %w", err)
	}

	return lo.Map(bids, func(b models.Bid, _ int) models.BidView {
		view := models.BidView{Bid: b}
		if u, ok := users[b.BidderID]; ok {
			view.Bidder = u.Summary()
		}
		return view
	}), nil
}

func (s *BiddingService) withAuctions(ctx context.Context, bids []models.Bid) ([]models.BidView, error) {
	ids := lo.Uniq(lo.Map(bids, func(b models.Bid, _ int) primitive.ObjectID { return b.AuctionID }))
	views := lo.Map(bids, func(b models.Bid, _ int) models.BidView { return models.BidView{Bid: b} })
	if len(ids) == 0 {
		return views, nil
	}

	auctions, err := s.repo.FindAuctions(ctx, search.Query{IDs: ids, Limit: int64(len(ids))})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load auctions: %w", err)
	}
	byID := lo.KeyBy(auctions, func(a models.Auction) primitive.ObjectID { return a.ID })

	for i := range views {
		if a, ok := byID[views[i].AuctionID]; ok {
			views[i].Auction = a.Summary()
		}
	}
	return views, nil
}
