package auctions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/search"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing is one page of auctions and the ordering that produced it
type Listing struct {
	Auctions []models.Auction
	SortMode search.SortMode
}

// AuctionService defines the business logic for browsing and listing auctions
type AuctionService struct {
	repo   repository.AuctionRepository
	policy *bluemonday.Policy
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionRepository) *AuctionService {
	return &AuctionService{
		repo:   repo,
		policy: bluemonday.UGCPolicy(),
	}
}

// ListAuctions filters and orders auctions according to the listing parameters
func (s *AuctionService) ListAuctions(ctx context.Context, p search.Params) (Listing, error) {
	query, err := search.BuildAuctionQuery(p)
	if err != nil {
		return Listing{}, fmt.Errorf("service: %w", err)
	}

	auctions, err := s.repo.FindAuctions(ctx, query)
	if err != nil {
		return Listing{}, fmt.Errorf("service: failed to list auctions: %w", err)
	}

	mode := query.Sort
	if mode == search.SortBestMatch && !query.Scored() {
		mode = search.SortLatest
	}
	return Listing{Auctions: auctions, SortMode: mode}, nil
}

// SearchAuctions is the keyword search: q is required, only the price range
// narrows it further and results come newest first.
func (s *AuctionService) SearchAuctions(ctx context.Context, p search.Params) ([]models.Auction, error) {
	if strings.TrimSpace(p.Q) == "" {
		return nil, fmt.Errorf("service: %w - search query \"q\" is required", marketerrors.ErrInvalidInput)
	}
	if p.Limit == "" {
		p.Limit = fmt.Sprint(search.DefaultSearchLimit)
	}

	query, err := search.BuildAuctionQuery(search.Params{
		Q:        p.Q,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		Limit:    p.Limit,
		Sort:     string(search.SortLatest),
	})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	auctions, err := s.repo.FindAuctions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search auctions for %q: %w", p.Q, err)
	}
	return auctions, nil
}

// GetAuction returns one auction and counts the view
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	auction, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// FindSimilar returns the auction itself and up to limit other auctions sharing
// a keyword of its title.
func (s *AuctionService) FindSimilar(ctx context.Context, auctionID, limit string) (models.Auction, []models.Auction, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: %w", err)
	}
	n, err := search.ParseLimit(limit, search.DefaultSimilarLimit)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: %w", err)
	}

	auction, err := s.repo.GetAuction(ctx, id)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	similar, err := s.repo.FindAuctions(ctx, search.SimilarQuery(auction, n))
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: failed to find auctions similar to %s: %w", auctionID, err)
	}
	return auction, similar, nil
}

// CreateAuction validates and stores a new listing. Cached aggregates always start at zero.
func (s *AuctionService) CreateAuction(ctx context.Context, a models.Auction) (models.Auction, error) {
	a.ID = primitive.NilObjectID
	a.Description = s.policy.Sanitize(a.Description)
	a.CurrentBid, a.BidCount, a.ReserveMet, a.WatchersCount, a.ViewCount, a.BidSeq = 0, 0, false, 0, 0, 0
	a.Score = nil
	if a.StartDate.IsZero() {
		a.StartDate = time.Now().UTC()
	}
	a.Normalize()

	if err := a.Validate(); err != nil {
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	created, err := s.repo.CreateAuction(ctx, a)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return created, nil
}

// DeleteAuction removes an auction with its bids, watches and questions
func (s *AuctionService) DeleteAuction(ctx context.Context, auctionID string) error {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.DeleteAuction(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}
	return nil
}
