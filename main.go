package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ai "auction-marketplace/internal/aiService"
	auctions "auction-marketplace/internal/auctionService"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/models"
	questions "auction-marketplace/internal/questionService"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	users "auction-marketplace/internal/userService"
	watchlist "auction-marketplace/internal/watchlistService"
	"auction-marketplace/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Fatal("invalid log level", map[string]any{"error": err.Error()})
	}
	if err := utils.SetFormat(cfg.LogFormat); err != nil {
		utils.Fatal("invalid log format", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"storage": cfg.Storage, "error": err.Error()})
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			utils.Error("failed to close store", map[string]any{"error": err.Error()})
		}
	}()

	responder := ai.NewResponder(ai.Config{
		Provider:      cfg.AI.Provider,
		Timeout:       cfg.AI.Timeout,
		GeminiAPIKey:  cfg.AI.GeminiAPIKey,
		GeminiModel:   cfg.AI.GeminiModel,
		GeminiBaseURL: cfg.AI.GeminiBaseURL,
		OllamaURL:     cfg.AI.OllamaURL,
		OllamaModel:   cfg.AI.OllamaModel,
	}, &http.Client{})
	utils.Info("AI responder selected", map[string]any{
		"configured": responder.IsConfigured(),
		"provider":   responder.Provider(),
	})

	router := server.SetupRouter(server.Services{
		Auctions: auctions.NewAuctionService(store),
		Bidding: bidding.NewBiddingService(store,
			bidding.WithMaxRetries(cfg.Bidding.MaxRetries),
			bidding.WithInitialBackoff(cfg.Bidding.InitialBackoff),
		),
		Watchlist:          watchlist.NewWatchlistService(store),
		Questions:          questions.NewQuestionService(store, responder, questions.WithHistorySize(cfg.QuestionHistorySize)),
		Users:              users.NewUserService(store),
		Store:              store,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		WriteRateLimit:     cfg.WriteRateLimit,
		WriteRateBurst:     cfg.WriteRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"address": cfg.ServerAddress, "storage": cfg.Storage})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openStore connects the configured backend. The memory store starts with sample listings.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	if cfg.Storage == config.StorageMemory {
		repo := repository.NewMemoryRepo()
		if err := prepopulateAuctions(ctx, repo); err != nil {
			return nil, err
		}
		return repo, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()
	return repository.NewMongoStore(connectCtx, repository.MongoOptions{
		URI:          cfg.Mongo.URI,
		Database:     cfg.Mongo.Database,
		Timeout:      cfg.Mongo.Timeout,
		Transactions: cfg.Mongo.Transactions,
	})
}

// prepopulateAuctions adds a seller and sample auctions to the in-memory repo
func prepopulateAuctions(ctx context.Context, repo *repository.MemoryRepo) error {
	seller, err := repo.CreateUser(ctx, models.User{
		Username:                 "kiwiseller",
		Email:                    "seller@example.com",
		Location:                 "Auckland",
		RatingPositivePercentage: 99.2,
		Verified:                 true,
	})
	if err != nil {
		return err
	}

	end := time.Now().UTC().Add(7 * 24 * time.Hour)
	samples := []models.Auction{
		{Title: "Canon AE-1 film camera", Description: "Working 35mm camera with 50mm lens", Category: "Electronics", Location: "Auckland", Colour: "Black", StartPrice: 100, ReservePrice: 200, Condition: models.ConditionUsed},
		{Title: "Brass desk lamp", Description: "Vintage lamp, rewired", Category: "Home", Location: "Wellington", Colour: "Gold", StartPrice: 40, Condition: models.ConditionRefurbished},
		{Title: "Road bike 54cm", Description: "Aluminium frame, Shimano 105 groupset", Category: "Sports", Location: "Christchurch", Colour: "Red", StartPrice: 350, ReservePrice: 500, BuyNowPrice: 700, Condition: models.ConditionUsed},
	}

	for _, a := range samples {
		a.ID = primitive.NewObjectID()
		a.SellerID = &seller.ID
		a.StartDate = time.Now().UTC()
		a.CreatedAt = a.StartDate
		a.EndDate = &end
		a.ShippingOptions = []models.ShippingOption{{Method: "Courier", Price: 9.5}, {Method: "Pickup"}}
		a.PaymentMethods = []string{"Bank transfer", "Cash"}
		a.Normalize()
		repo.AddAuction(a)
	}
	return nil
}
