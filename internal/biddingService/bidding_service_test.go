package bidding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/search"

	"github.com/golang/mock/gomock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

var clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockedService(t *testing.T, opts ...Option) (*BiddingService, *repository.MockStore) {
	ctrl := gomock.NewController(t)
	repo := repository.NewMockStore(ctrl)
	opts = append([]Option{WithClock(func() time.Time { return clock }), WithInitialBackoff(time.Millisecond)}, opts...)
	return NewBiddingService(repo, opts...), repo
}

// Helper to create an active auction that closes a day after clock
func activeAuction(id primitive.ObjectID) models.Auction {
	end := clock.Add(24 * time.Hour)
	return models.Auction{
		ID:              id,
		Title:           "Vintage camera",
		StartPrice:      100,
		ReservePrice:    200,
		Status:          models.AuctionActive,
		EndDate:         &end,
		ShippingOptions: []models.ShippingOption{{Method: "Courier", Price: 8.5}},
	}
}

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	t.Parallel()

	auctionID, bidderID := primitive.NewObjectID(), primitive.NewObjectID()
	bidder := models.User{ID: bidderID, Username: "kiwibuyer", RatingPositivePercentage: 99.5}
	input := func(amount float64) PlaceBidInput {
		return PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: amount}
	}
	accept := func(repo *repository.MockStore, wantSeq int64, wantReserve bool) {
		repo.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p repository.AcceptBidParams) (models.Bid, error) {
				require.Equal(t, wantSeq, p.ExpectedSeq)
				require.Equal(t, wantReserve, p.ReserveMet)
				require.Equal(t, clock, p.Bid.BidTime)
				bid := p.Bid
				bid.ID, bid.Status = primitive.NewObjectID(), models.BidWinning
				return bid, nil
			})
		repo.EXPECT().GetUsers(gomock.Any(), []primitive.ObjectID{bidderID}).
			Return(map[primitive.ObjectID]models.User{bidderID: bidder}, nil)
	}

	maxBelow := 120.0
	tests := []struct {
		name          string
		in            PlaceBidInput
		mockSetup     func(repo *repository.MockStore)
		expectedError error
	}{
		{
			name: "valid_first_bid",
			in:   input(150),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids)
				accept(repo, 0, false)
			},
		},
		{
			name: "bid_meeting_reserve",
			in:   PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 200, ShippingMethod: "courier"},
			mockSetup: func(repo *repository.MockStore) {
				a := activeAuction(auctionID)
				a.BidSeq, a.CurrentBid = 1, 150
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(a, nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{Amount: 150}, nil)
				accept(repo, 1, true)
			},
		},
		{
			name:          "missing_auction_id",
			in:            PlaceBidInput{BidderID: bidderID.Hex(), Amount: 150},
			mockSetup:     func(*repository.MockStore) {},
			expectedError: marketerrors.ErrInvalidBid,
		},
		{
			name:          "malformed_bidder_id",
			in:            PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: "bidder-1", Amount: 150},
			mockSetup:     func(*repository.MockStore) {},
			expectedError: marketerrors.ErrInvalidID,
		},
		{
			name:          "zero_amount",
			in:            input(0),
			mockSetup:     func(*repository.MockStore) {},
			expectedError: marketerrors.ErrInvalidBid,
		},
		{
			name:          "max_auto_bid_below_amount",
			in:            PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 150, IsAutoBid: true, MaxAutoBid: &maxBelow},
			mockSetup:     func(*repository.MockStore) {},
			expectedError: marketerrors.ErrInvalidBid,
		},
		{
			name: "auction_not_found",
			in:   input(150),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(models.Auction{}, marketerrors.ErrAuctionNotFound)
			},
			expectedError: marketerrors.ErrNotFound,
		},
		{
			name: "auction_not_active",
			in:   input(150),
			mockSetup: func(repo *repository.MockStore) {
				a := activeAuction(auctionID)
				a.Status = models.AuctionSold
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(a, nil)
			},
			expectedError: marketerrors.ErrAuctionNotActive,
		},
		{
			name: "auction_ended",
			in:   input(150),
			mockSetup: func(repo *repository.MockStore) {
				a := activeAuction(auctionID)
				end := clock.Add(-time.Minute)
				a.EndDate = &end
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(a, nil)
			},
			expectedError: marketerrors.ErrAuctionEnded,
		},
		{
			name: "equal_to_start_price",
			in:   input(100),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids)
			},
			expectedError: marketerrors.ErrBidTooLow,
		},
		{
			name: "below_winning_bid",
			in:   input(200),
			mockSetup: func(repo *repository.MockStore) {
				a := activeAuction(auctionID)
				a.BidSeq, a.CurrentBid = 2, 250
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(a, nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{Amount: 250}, nil)
			},
			expectedError: marketerrors.ErrBidTooLow,
		},
		{
			name: "current_bid_bounds_minimum",
			in:   input(200),
			mockSetup: func(repo *repository.MockStore) {
				a := activeAuction(auctionID)
				a.BidSeq, a.CurrentBid = 1, 250
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(a, nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids)
			},
			expectedError: marketerrors.ErrBidTooLow,
		},
		{
			name: "unknown_shipping_method",
			in:   PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 150, ShippingMethod: "Drone"},
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids)
			},
			expectedError: marketerrors.ErrInvalidBid,
		},
		{
			name: "winning_bid_lookup_fails",
			in:   input(150),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil)
				repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, errors.New("db failure"))
			},
			expectedError: nil, // wrapped storage error
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, repo := newMockedService(t)
			tc.mockSetup(repo)

			view, err := svc.PlaceBid(context.Background(), tc.in)

			if tc.expectedError != nil || tc.name == "winning_bid_lookup_fails" {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
				return
			}
			require.NoError(t, err)
			require.False(t, view.ID.IsZero())
			require.Equal(t, models.BidWinning, view.Status)
			require.Equal(t, tc.in.Amount, view.Amount)
			require.NotNil(t, view.Bidder)
			require.Equal(t, "kiwibuyer", view.Bidder.Username)
		})
	}
}

func TestBiddingService_PlaceBid_RetriesConcurrentUpdate(t *testing.T) {
	t.Parallel()

	auctionID, bidderID := primitive.NewObjectID(), primitive.NewObjectID()
	svc, repo := newMockedService(t)

	stale := activeAuction(auctionID)
	fresh := activeAuction(auctionID)
	fresh.BidSeq, fresh.CurrentBid = 1, 120

	gomock.InOrder(
		repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(stale, nil),
		repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids),
		repo.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).Return(models.Bid{}, marketerrors.ErrConcurrentUpdate),
		repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(fresh, nil),
		repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{Amount: 120}, nil),
		repo.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p repository.AcceptBidParams) (models.Bid, error) {
				require.Equal(t, int64(1), p.ExpectedSeq)
				return p.Bid, nil
			}),
		repo.EXPECT().GetUsers(gomock.Any(), gomock.Any()).Return(map[primitive.ObjectID]models.User{}, nil),
	)

	view, err := svc.PlaceBid(context.Background(), PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 150})
	require.NoError(t, err)
	require.Equal(t, 150.0, view.Amount)
	require.Nil(t, view.Bidder)
}

func TestBiddingService_PlaceBid_LosesRaceToHigherBid(t *testing.T) {
	t.Parallel()

	auctionID, bidderID := primitive.NewObjectID(), primitive.NewObjectID()
	svc, repo := newMockedService(t)

	fresh := activeAuction(auctionID)
	fresh.BidSeq, fresh.CurrentBid = 1, 180

	gomock.InOrder(
		repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil),
		repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids),
		repo.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).Return(models.Bid{}, marketerrors.ErrConcurrentUpdate),
		repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(fresh, nil),
		repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{Amount: 180}, nil),
	)

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 150})
	require.ErrorIs(t, err, marketerrors.ErrBidTooLow)
}

func TestBiddingService_PlaceBid_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	auctionID, bidderID := primitive.NewObjectID(), primitive.NewObjectID()
	svc, repo := newMockedService(t, WithMaxRetries(2))

	repo.EXPECT().GetAuction(gomock.Any(), auctionID).Return(activeAuction(auctionID), nil).Times(3)
	repo.EXPECT().GetWinningBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids).Times(3)
	repo.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).Return(models.Bid{}, marketerrors.ErrConcurrentUpdate).Times(3)

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{AuctionID: auctionID.Hex(), BidderID: bidderID.Hex(), Amount: 150})
	require.ErrorIs(t, err, marketerrors.ErrConcurrentUpdate)
}

// seedAuction stores an active auction (start 100, reserve 200) closing tomorrow
func seedAuction(t *testing.T, repo *repository.MemoryRepo) models.Auction {
	t.Helper()

	end := time.Now().UTC().Add(24 * time.Hour)
	a, err := repo.CreateAuction(context.Background(), models.Auction{
		Title:        "Vintage camera",
		Description:  "Working film camera",
		Category:     "Electronics",
		Location:     "Auckland",
		Colour:       "Black",
		StartPrice:   100,
		ReservePrice: 200,
		Status:       models.AuctionActive,
		EndDate:      &end,
	})
	require.NoError(t, err)
	return a
}

func TestBiddingService_BidScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := NewBiddingService(repo)
	auction := seedAuction(t, repo)

	alice, err := repo.CreateUser(ctx, models.User{Username: "alice", Email: "alice@example.com", Location: "Auckland"})
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, models.User{Username: "bob", Email: "bob@example.com", Location: "Wellington"})
	require.NoError(t, err)

	place := func(bidder models.User, amount float64) (models.BidView, error) {
		return svc.PlaceBid(ctx, PlaceBidInput{AuctionID: auction.ID.Hex(), BidderID: bidder.ID.Hex(), Amount: amount})
	}
	reload := func() models.Auction {
		a, err := repo.GetAuction(ctx, auction.ID)
		require.NoError(t, err)
		return a
	}

	_, err = place(alice, 100)
	require.ErrorIs(t, err, marketerrors.ErrBidTooLow)
	require.Zero(t, reload().BidCount)

	first, err := place(alice, 150)
	require.NoError(t, err)
	require.Equal(t, "alice", first.Bidder.Username)
	a := reload()
	require.Equal(t, 150.0, a.CurrentBid)
	require.Equal(t, int64(1), a.BidCount)
	require.False(t, a.ReserveMet)

	_, err = place(bob, 250)
	require.NoError(t, err)
	a = reload()
	require.Equal(t, 250.0, a.CurrentBid)
	require.Equal(t, int64(2), a.BidCount)
	require.True(t, a.ReserveMet)

	_, err = place(alice, 200)
	require.ErrorIs(t, err, marketerrors.ErrBidTooLow)
	require.Equal(t, int64(2), reload().BidCount)

	bids, err := svc.GetBidsForAuction(ctx, auction.ID.Hex())
	require.NoError(t, err)
	require.Len(t, bids, 2)
	byAmount := lo.KeyBy(bids, func(b models.BidView) float64 { return b.Amount })
	require.Equal(t, models.BidWinning, byAmount[250].Status)
	require.Equal(t, models.BidOutbid, byAmount[150].Status)

	highest, err := svc.GetHighestBid(ctx, auction.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, 250.0, highest.Amount)
	require.Equal(t, "bob", highest.Bidder.Username)

	mine, err := svc.GetBidsByUser(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Auction)
	require.Equal(t, "Vintage camera", mine[0].Auction.Title)

	mineHere, err := svc.GetUserBidsForAuction(ctx, bob.ID.Hex(), auction.ID.Hex())
	require.NoError(t, err)
	require.Len(t, mineHere, 1)
	require.Equal(t, 250.0, mineHere[0].Amount)
}

// Concurrent bidders on one auction never leave the ledger and the aggregates apart
func TestBiddingService_ConcurrentBids(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	svc := NewBiddingService(repo, WithMaxRetries(100), WithInitialBackoff(time.Microsecond))
	auction := seedAuction(t, repo)

	const bidders = 30
	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	for i := 1; i <= bidders; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, err := svc.PlaceBid(ctx, PlaceBidInput{
				AuctionID: auction.ID.Hex(),
				BidderID:  primitive.NewObjectID().Hex(),
				Amount:    amount,
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case !errors.Is(err, marketerrors.ErrBidTooLow):
				t.Errorf("unexpected error for bid %.0f: %v", amount, err)
			}
		}(100 + float64(i))
	}
	wg.Wait()

	bids, err := repo.ListBids(ctx, repository.BidFilter{AuctionID: &auction.ID})
	require.NoError(t, err)
	require.Equal(t, int(accepted.Load()), len(bids))

	winning := lo.Filter(bids, func(b models.Bid, _ int) bool { return b.Status == models.BidWinning })
	require.Len(t, winning, 1)
	require.Equal(t, 100.0+bidders, winning[0].Amount)
	require.Len(t, lo.UniqBy(bids, func(b models.Bid) float64 { return b.Amount }), len(bids))

	a, err := repo.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0+bidders, a.CurrentBid)
	require.Equal(t, int64(len(bids)), a.BidCount)
	require.False(t, a.ReserveMet)
}

// Tests GetHighestBid
func TestBiddingService_GetHighestBid(t *testing.T) {
	t.Parallel()

	auctionID := primitive.NewObjectID()
	tests := []struct {
		name          string
		auctionID     string
		mockSetup     func(repo *repository.MockStore)
		expectedError error
	}{
		{
			name:      "no_bids",
			auctionID: auctionID.Hex(),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetHighestBid(gomock.Any(), auctionID).Return(models.Bid{}, marketerrors.ErrNoBids)
			},
			expectedError: marketerrors.ErrNoBids,
		},
		{
			name:          "invalid_id",
			auctionID:     "abc",
			mockSetup:     func(*repository.MockStore) {},
			expectedError: marketerrors.ErrInvalidID,
		},
		{
			name:      "repo_error",
			auctionID: auctionID.Hex(),
			mockSetup: func(repo *repository.MockStore) {
				repo.EXPECT().GetHighestBid(gomock.Any(), auctionID).Return(models.Bid{}, errors.New("repo error"))
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, repo := newMockedService(t)
			tc.mockSetup(repo)

			_, err := svc.GetHighestBid(context.Background(), tc.auctionID)
			require.Error(t, err)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
			}
		})
	}
}

// Tests GetBidsForAuction and GetBidsByUser with empty ledgers
func TestBiddingService_EmptyListings(t *testing.T) {
	t.Parallel()

	userID, auctionID := primitive.NewObjectID(), primitive.NewObjectID()
	svc, repo := newMockedService(t)

	repo.EXPECT().ListBids(gomock.Any(), repository.BidFilter{AuctionID: &auctionID}).Return([]models.Bid{}, nil)
	repo.EXPECT().ListBids(gomock.Any(), repository.BidFilter{BidderID: &userID}).Return([]models.Bid{}, nil)

	bids, err := svc.GetBidsForAuction(context.Background(), auctionID.Hex())
	require.NoError(t, err)
	require.NotNil(t, bids)
	require.Empty(t, bids)

	mine, err := svc.GetBidsByUser(context.Background(), userID.Hex())
	require.NoError(t, err)
	require.NotNil(t, mine)
	require.Empty(t, mine)
}

func TestBiddingService_GetBidsByUser_LoadsAuctionsOnce(t *testing.T) {
	t.Parallel()

	userID := primitive.NewObjectID()
	a1, a2 := activeAuction(primitive.NewObjectID()), activeAuction(primitive.NewObjectID())
	a2.Title = "Road bike"
	svc, repo := newMockedService(t)

	repo.EXPECT().ListBids(gomock.Any(), gomock.Any()).Return([]models.Bid{
		{AuctionID: a1.ID, BidderID: userID, Amount: 300},
		{AuctionID: a2.ID, BidderID: userID, Amount: 120},
		{AuctionID: a1.ID, BidderID: userID, Amount: 250},
	}, nil)
	repo.EXPECT().FindAuctions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q search.Query) ([]models.Auction, error) {
			require.ElementsMatch(t, []primitive.ObjectID{a1.ID, a2.ID}, q.IDs)
			return []models.Auction{a1, a2}, nil
		})

	views, err := svc.GetBidsByUser(context.Background(), userID.Hex())
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.Equal(t, "Vintage camera", views[0].Auction.Title)
	require.Equal(t, "Road bike", views[1].Auction.Title)
}
