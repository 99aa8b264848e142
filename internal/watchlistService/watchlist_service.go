package watchlist

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/search"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the storage the watchlist service reads and writes
type Repository interface {
	repository.AuctionRepository
	repository.WatchlistRepository
}

// WatchlistService keeps the user/auction watch joins and the cached watcher count
type WatchlistService struct {
	repo Repository
}

func NewWatchlistService(repo Repository) *WatchlistService {
	return &WatchlistService{repo: repo}
}

func parsePair(userID, auctionID string) (primitive.ObjectID, primitive.ObjectID, error) {
	if userID == "" || auctionID == "" {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("service: %w - user_id and auction_id are required", marketerrors.ErrInvalidInput)
	}
	uid, err := models.ParseID("user_id", userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("service: %w", err)
	}
	aid, err := models.ParseID("auction_id", auctionID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("service: %w", err)
	}
	return uid, aid, nil
}

// GetUserWatchlist returns the user's watches, most recently added first, with the watched auctions
func (s *WatchlistService) GetUserWatchlist(ctx context.Context, userID string) ([]models.WatchlistView, error) {
	id, err := models.ParseID("user id", userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	watches, err := s.repo.ListWatches(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}
	views := lo.Map(watches, func(w models.Watchlist, _ int) models.WatchlistView {
		return models.WatchlistView{Watchlist: w}
	})
	if len(views) == 0 {
		return views, nil
	}

	ids := lo.Map(watches, func(w models.Watchlist, _ int) primitive.ObjectID { return w.AuctionID })
	auctions, err := s.repo.FindAuctions(ctx, search.Query{IDs: ids, Limit: int64(len(ids))})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load watched auctions for user %s: %w", userID, err)
	}
	byID := lo.KeyBy(auctions, func(a models.Auction) primitive.ObjectID { return a.ID })
	for i := range views {
		if a, ok := byID[views[i].AuctionID]; ok {
			a := a
			views[i].Auction = &a
		}
	}
	return views, nil
}

// CountWatchers returns the live number of watchers of an auction
func (s *WatchlistService) CountWatchers(ctx context.Context, auctionID string) (int64, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}

	count, err := s.repo.CountWatchers(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service: failed to count watchers of auction %s: %w", auctionID, err)
	}
	return count, nil
}

// IsWatching is a pure existence check
func (s *WatchlistService) IsWatching(ctx context.Context, userID, auctionID string) (bool, error) {
	uid, aid, err := parsePair(userID, auctionID)
	if err != nil {
		return false, err
	}

	_, err = s.repo.FindWatch(ctx, uid, aid)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, marketerrors.ErrWatchNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service: failed to check watch of user %s on auction %s: %w", userID, auctionID, err)
	}
}

// AddWatch starts watching an auction and returns the join record with the new watcher count
func (s *WatchlistService) AddWatch(ctx context.Context, userID, auctionID string) (models.Watchlist, int64, error) {
	uid, aid, err := parsePair(userID, auctionID)
	if err != nil {
		return models.Watchlist{}, 0, err
	}

	if _, err := s.repo.GetAuction(ctx, aid); err != nil {
		return models.Watchlist{}, 0, fmt.Errorf("service: failed to watch auction %s: %w", auctionID, err)
	}

	_, err = s.repo.FindWatch(ctx, uid, aid)
	switch {
	case err == nil:
		return models.Watchlist{}, 0, fmt.Errorf("service: %w", marketerrors.ErrAlreadyWatching)
	case !errors.Is(err, marketerrors.ErrWatchNotFound):
		return models.Watchlist{}, 0, fmt.Errorf("service: failed to check watch of user %s on auction %s: %w", userID, auctionID, err)
	}

	// a concurrent add still fails with ErrAlreadyWatching on the unique pair
	watch, count, err := s.repo.AddWatch(ctx, models.Watchlist{UserID: uid, AuctionID: aid})
	if err != nil {
		return models.Watchlist{}, 0, fmt.Errorf("service: failed to watch auction %s for user %s: %w", auctionID, userID, err)
	}
	return watch, count, nil
}

// RemoveWatch stops watching an auction and returns the new watcher count
func (s *WatchlistService) RemoveWatch(ctx context.Context, userID, auctionID string) (int64, error) {
	uid, aid, err := parsePair(userID, auctionID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.RemoveWatch(ctx, uid, aid)
	if err != nil {
		return 0, fmt.Errorf("service: failed to unwatch auction %s for user %s: %w", auctionID, userID, err)
	}
	return count, nil
}
