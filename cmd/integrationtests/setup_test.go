package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ai "auction-marketplace/internal/aiService"
	auctions "auction-marketplace/internal/auctionService"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/models"
	questions "auction-marketplace/internal/questionService"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	users "auction-marketplace/internal/userService"
	watchlist "auction-marketplace/internal/watchlistService"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testEnv is a router over an in-memory store seeded with a seller, two buyers and one auction
type testEnv struct {
	router  *gin.Engine
	repo    *repository.MemoryRepo
	seller  models.User
	buyers  []models.User
	auction models.Auction
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T, responder ai.Responder) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	repo := repository.NewMemoryRepo()

	env := testEnv{repo: repo}
	var err error
	env.seller, err = repo.CreateUser(ctx, models.User{Username: "kiwiseller", Email: "seller@example.com", Location: "Auckland"})
	require.NoError(t, err)
	for _, name := range []string{"alice", "bob"} {
		u, err := repo.CreateUser(ctx, models.User{Username: name, Email: name + "@example.com", Location: "Nelson"})
		require.NoError(t, err)
		env.buyers = append(env.buyers, u)
	}
	env.auction = SeedAuction(t, repo, models.Auction{
		Title:        "Canon AE-1 film camera",
		Description:  "Working 35mm camera",
		Category:     "Electronics",
		Location:     "Auckland",
		Colour:       "Black",
		StartPrice:   100,
		ReservePrice: 200,
		SellerID:     &env.seller.ID,
		ShippingOptions: []models.ShippingOption{
			{Method: "Courier", Price: 8.5},
		},
	})

	env.router = server.SetupRouter(server.Services{
		Auctions:           auctions.NewAuctionService(repo),
		Bidding:            bidding.NewBiddingService(repo, bidding.WithMaxRetries(32), bidding.WithInitialBackoff(time.Millisecond)),
		Watchlist:          watchlist.NewWatchlistService(repo),
		Questions:          questions.NewQuestionService(repo, responder),
		Users:              users.NewUserService(repo),
		Store:              repo,
		CORSAllowedOrigins: []string{"*"},
	})
	return env
}

// SeedAuction stores an active auction closing in a day unless a takes its own values.
func SeedAuction(t *testing.T, repo *repository.MemoryRepo, a models.Auction) models.Auction {
	t.Helper()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if a.StartDate.IsZero() {
		a.StartDate = now.Add(-time.Hour)
	}
	if a.EndDate == nil {
		end := now.Add(24 * time.Hour)
		a.EndDate = &end
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.Normalize()
	repo.AddAuction(a)
	return a
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
	}
	return resp, w
}

// Data returns the data object of a single-item response
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "data should be an object: %v", resp)
	return data
}

// List returns the data array of a list response
func List(t *testing.T, resp map[string]any) []map[string]any {
	t.Helper()
	raw, ok := resp["data"].([]any)
	require.True(t, ok, "data should be an array: %v", resp)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]any))
	}
	return out
}

// Bid posts a bid and returns the response
func Bid(t *testing.T, env testEnv, bidder models.User, amount float64) (map[string]any, int) {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, env.router, http.MethodPost, "/api/bids", map[string]any{
		"auction_id": env.auction.ID.Hex(),
		"bidder_id":  bidder.ID.Hex(),
		"amount":     amount,
	})
	return resp, w.Code
}
