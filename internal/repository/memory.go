package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/search"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type watchKey struct {
	userID    primitive.ObjectID
	auctionID primitive.ObjectID
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
// Every multi-record write happens under a single lock, so AcceptBid, AddWatch
// and RemoveWatch are atomic.
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[primitive.ObjectID]models.Auction // key: auctionID
	auctionOrder []primitive.ObjectID                  // insertion order, for stable listings
	bids         map[primitive.ObjectID][]models.Bid   // key: auctionID -> value: bids in acceptance order
	watches      map[watchKey]models.Watchlist
	questions    []models.Question
	users        map[primitive.ObjectID]models.User
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[primitive.ObjectID]models.Auction),
		bids:     make(map[primitive.ObjectID][]models.Bid),
		watches:  make(map[watchKey]models.Watchlist),
		users:    make(map[primitive.ObjectID]models.User),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func (r *MemoryRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepo) Close(context.Context) error {
	return nil
}

// CreateAuction stores a new auction, assigning an id and timestamps when missing
func (r *MemoryRepo) CreateAuction(_ context.Context, a models.Auction) (models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, exists := r.auctions[a.ID]; exists {
		return models.Auction{}, fmt.Errorf("create auction %s: %w: duplicate id", a.ID.Hex(), marketerrors.ErrConflict)
	}
	a.Normalize()
	ts := now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = ts
	}
	a.UpdatedAt = ts
	r.auctions[a.ID] = a
	r.auctionOrder = append(r.auctionOrder, a.ID)
	return a, nil
}

// GetAuction returns a normalized auction
func (r *MemoryRepo) GetAuction(_ context.Context, id primitive.ObjectID) (models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return models.Auction{}, fmt.Errorf("get auction %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
	}
	a.Normalize()
	return a, nil
}

func (r *MemoryRepo) IncrementViews(_ context.Context, id primitive.ObjectID) (models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[id]
	if !ok {
		return models.Auction{}, fmt.Errorf("increment views %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
	}
	a.ViewCount++
	r.auctions[id] = a
	a.Normalize()
	return a, nil
}

// FindAuctions evaluates query against all auctions in insertion order
func (r *MemoryRepo) FindAuctions(_ context.Context, query search.Query) ([]models.Auction, error) {
	r.mu.RLock()
	all := make([]models.Auction, 0, len(r.auctionOrder))
	for _, id := range r.auctionOrder {
		a := r.auctions[id]
		a.Normalize()
		all = append(all, a)
	}
	r.mu.RUnlock()

	return query.Apply(all), nil
}

func (r *MemoryRepo) DeleteAuction(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		return fmt.Errorf("delete auction %s: %w", id.Hex(), marketerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, id)
	delete(r.bids, id)
	r.auctionOrder = lo.Without(r.auctionOrder, id)
	for key := range r.watches {
		if key.auctionID == id {
			delete(r.watches, key)
		}
	}
	r.questions = lo.Reject(r.questions, func(q models.Question, _ int) bool { return q.AuctionID == id })
	return nil
}

// AddAuction stores an auction verbatim, including legacy fields and aggregates.
// This method is intended for tests and seeding only.
func (r *MemoryRepo) AddAuction(a models.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.auctions[a.ID]; !exists {
		r.auctionOrder = append(r.auctionOrder, a.ID)
	}
	r.auctions[a.ID] = a
}

// GetWinningBid returns the most recent bid marked winning
func (r *MemoryRepo) GetWinningBid(_ context.Context, auctionID primitive.ObjectID) (models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[auctionID]
	for i := len(bids) - 1; i >= 0; i-- {
		if bids[i].Status == models.BidWinning {
			return bids[i], nil
		}
	}
	return models.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID.Hex(), marketerrors.ErrNoBids)
}

// GetHighestBid returns the bid with the largest amount, earliest first on ties
func (r *MemoryRepo) GetHighestBid(_ context.Context, auctionID primitive.ObjectID) (models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return models.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID.Hex(), marketerrors.ErrNoBids)
	}
	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, nil
}

// AcceptBid records a winning bid and refreshes the auction aggregates atomically
func (r *MemoryRepo) AcceptBid(_ context.Context, p AcceptBidParams) (models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid := p.Bid
	auction, ok := r.auctions[bid.AuctionID]
	if !ok {
		return models.Bid{}, fmt.Errorf("accept bid for auction %s: %w", bid.AuctionID.Hex(), marketerrors.ErrAuctionNotFound)
	}
	if auction.BidSeq != p.ExpectedSeq {
		return models.Bid{}, fmt.Errorf("accept bid for auction %s: %w", bid.AuctionID.Hex(), marketerrors.ErrConcurrentUpdate)
	}

	ts := now()
	if bid.ID.IsZero() {
		bid.ID = primitive.NewObjectID()
	}
	bid.Status = models.BidWinning
	bid.Seq = auction.BidSeq + 1
	bid.CreatedAt, bid.UpdatedAt = ts, ts

	bids := r.bids[bid.AuctionID]
	for i := range bids {
		if bids[i].Status == models.BidWinning {
			bids[i].Status = models.BidOutbid
			bids[i].UpdatedAt = ts
		}
	}
	bids = append(bids, bid)
	r.bids[bid.AuctionID] = bids

	auction.CurrentBid = bid.Amount
	auction.BidCount = int64(len(bids))
	auction.ReserveMet = p.ReserveMet
	auction.BidSeq++
	auction.UpdatedAt = ts
	r.auctions[bid.AuctionID] = auction

	return bid, nil
}

// ListBids returns matching bids, newest first
func (r *MemoryRepo) ListBids(_ context.Context, f BidFilter) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Bid
	collect := func(bids []models.Bid) {
		for _, b := range bids {
			if f.BidderID != nil && b.BidderID != *f.BidderID {
				continue
			}
			out = append(out, b)
		}
	}
	if f.AuctionID != nil {
		collect(r.bids[*f.AuctionID])
	} else {
		for _, bids := range r.bids {
			collect(bids)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].BidTime.After(out[j].BidTime) })
	if out == nil {
		out = []models.Bid{}
	}
	return out, nil
}

func (r *MemoryRepo) FindWatch(_ context.Context, userID, auctionID primitive.ObjectID) (models.Watchlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.watches[watchKey{userID, auctionID}]
	if !ok {
		return models.Watchlist{}, fmt.Errorf("find watch user %s auction %s: %w", userID.Hex(), auctionID.Hex(), marketerrors.ErrWatchNotFound)
	}
	return w, nil
}

// countWatchersLocked recomputes and stores watchers_count. Caller holds the write lock.
func (r *MemoryRepo) countWatchersLocked(auctionID primitive.ObjectID) int64 {
	var count int64
	for key := range r.watches {
		if key.auctionID == auctionID {
			count++
		}
	}
	if a, ok := r.auctions[auctionID]; ok {
		a.WatchersCount = count
		a.UpdatedAt = now()
		r.auctions[auctionID] = a
	}
	return count
}

func (r *MemoryRepo) AddWatch(_ context.Context, w models.Watchlist) (models.Watchlist, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[w.AuctionID]; !ok {
		return models.Watchlist{}, 0, fmt.Errorf("add watch auction %s: %w", w.AuctionID.Hex(), marketerrors.ErrAuctionNotFound)
	}
	key := watchKey{w.UserID, w.AuctionID}
	if _, exists := r.watches[key]; exists {
		return models.Watchlist{}, 0, fmt.Errorf("add watch user %s auction %s: %w", w.UserID.Hex(), w.AuctionID.Hex(), marketerrors.ErrAlreadyWatching)
	}

	ts := now()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.AddedDate.IsZero() {
		w.AddedDate = ts
	}
	w.CreatedAt, w.UpdatedAt = ts, ts
	r.watches[key] = w

	return w, r.countWatchersLocked(w.AuctionID), nil
}

func (r *MemoryRepo) RemoveWatch(_ context.Context, userID, auctionID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := watchKey{userID, auctionID}
	if _, ok := r.watches[key]; !ok {
		return 0, fmt.Errorf("remove watch user %s auction %s: %w", userID.Hex(), auctionID.Hex(), marketerrors.ErrWatchNotFound)
	}
	delete(r.watches, key)
	return r.countWatchersLocked(auctionID), nil
}

func (r *MemoryRepo) CountWatchers(_ context.Context, auctionID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for key := range r.watches {
		if key.auctionID == auctionID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) ListWatches(_ context.Context, userID primitive.ObjectID) ([]models.Watchlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Watchlist{}
	for key, w := range r.watches {
		if key.userID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedDate.After(out[j].AddedDate) })
	return out, nil
}

func (r *MemoryRepo) CreateQuestion(_ context.Context, q models.Question) (models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := now()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	if q.QuestionDate.IsZero() {
		q.QuestionDate = ts
	}
	q.CreatedAt, q.UpdatedAt = ts, ts
	r.questions = append(r.questions, q)
	return q, nil
}

func (r *MemoryRepo) GetQuestion(_ context.Context, id primitive.ObjectID) (models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := lo.Find(r.questions, func(q models.Question) bool { return q.ID == id })
	if !ok {
		return models.Question{}, fmt.Errorf("get question %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
	}
	return q, nil
}

func (r *MemoryRepo) UpdateAnswer(_ context.Context, id primitive.ObjectID, answer models.Answer) (models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(r.questions, func(q models.Question) bool { return q.ID == id })
	if !ok {
		return models.Question{}, fmt.Errorf("update answer %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
	}
	q := &r.questions[idx]
	date := answer.Date
	q.AnswerText = answer.Text
	q.AnswerDate = &date
	q.AnswerUserID = answer.UserID
	q.UpdatedAt = now()
	return *q, nil
}

func (r *MemoryRepo) ListQuestions(_ context.Context, f QuestionFilter) ([]models.Question, int64, error) {
	r.mu.RLock()
	matched := lo.Filter(r.questions, func(q models.Question, _ int) bool {
		switch {
		case f.AuctionID != nil && q.AuctionID != *f.AuctionID:
			return false
		case f.UserID != nil && q.QuestionUserID != *f.UserID:
			return false
		case f.PublicOnly && !q.IsPublic:
			return false
		}
		return true
	})
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].QuestionDate.After(matched[j].QuestionDate) })
	total := int64(len(matched))

	if f.Offset >= total {
		return []models.Question{}, total, nil
	}
	page := matched[f.Offset:]
	if f.Limit > 0 && int64(len(page)) > f.Limit {
		page = page[:f.Limit]
	}
	return page, total, nil
}

func (r *MemoryRepo) DeleteQuestion(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(r.questions, func(q models.Question) bool { return q.ID == id })
	if !ok {
		return fmt.Errorf("delete question %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
	}
	r.questions = append(r.questions[:idx], r.questions[idx+1:]...)
	return nil
}

// CreateUser stores a user; username and email are unique
func (r *MemoryRepo) CreateUser(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return models.User{}, fmt.Errorf("create user %s: %w", u.Username, marketerrors.ErrUserExists)
		}
	}

	ts := now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.MemberSince.IsZero() {
		u.MemberSince = ts
	}
	u.CreatedAt, u.UpdatedAt = ts, ts
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepo) GetUser(_ context.Context, id primitive.ObjectID) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("get user %s: %w", id.Hex(), marketerrors.ErrUserNotFound)
	}
	return u, nil
}

func (r *MemoryRepo) GetUsers(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *MemoryRepo) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("find user %q: %w", username, marketerrors.ErrUserNotFound)
}
