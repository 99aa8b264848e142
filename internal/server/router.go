package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	auctionhandler "auction-marketplace/services/auctions/handler"
	biddinghandler "auction-marketplace/services/bidding/handler"
	questionhandler "auction-marketplace/services/questions/handler"
	userhandler "auction-marketplace/services/users/handler"
	watchlisthandler "auction-marketplace/services/watchlist/handler"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services holds everything the router mounts
type Services struct {
	Auctions           auctionhandler.AuctionServiceInterface
	Bidding            biddinghandler.BiddingServiceInterface
	Watchlist          watchlisthandler.WatchlistServiceInterface
	Questions          questionhandler.QuestionServiceInterface
	Users              userhandler.UserServiceInterface
	Store              Pinger
	CORSAllowedOrigins []string
	// WriteRateLimit is requests per second per client for POST, PUT and DELETE; zero disables it
	WriteRateLimit float64
	WriteRateBurst int
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlate logs with responses
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(CORSMiddleware(s.CORSAllowedOrigins))
	router.Use(RateLimitMiddleware(s.WriteRateLimit, s.WriteRateBurst))

	router.GET("/health", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "")
	})
	router.GET("/ready", readyHandler(s.Store))

	auctionHandler := auctionhandler.NewAuctionHandler(s.Auctions)
	biddingHandler := biddinghandler.NewBiddingHandler(s.Bidding)
	watchlistHandler := watchlisthandler.NewWatchlistHandler(s.Watchlist)
	questionHandler := questionhandler.NewQuestionHandler(s.Questions)
	userHandler := userhandler.NewUserHandler(s.Users)

	api := router.Group("/api")

	auctions := api.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/search", auctionHandler.SearchAuctionsHandler)
		auctions.GET("/:id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:id/similar", auctionHandler.SimilarAuctionsHandler)
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.DELETE("/:id", auctionHandler.DeleteAuctionHandler)
	}

	bids := api.Group("/bids")
	{
		bids.POST("", biddingHandler.PlaceBidHandler)
		bids.GET("/auction/:auctionId", biddingHandler.GetBidsForAuctionHandler)
		bids.GET("/auction/:auctionId/highest", biddingHandler.GetHighestBidHandler)
		bids.GET("/user/:userId", biddingHandler.GetBidsByUserHandler)
		bids.GET("/user/:userId/auction/:auctionId", biddingHandler.GetUserBidsForAuctionHandler)
	}

	watchlist := api.Group("/watchlist")
	{
		watchlist.GET("/user/:userId", watchlistHandler.GetUserWatchlistHandler)
		watchlist.GET("/auction/:auctionId/count", watchlistHandler.CountWatchersHandler)
		watchlist.GET("/check", watchlistHandler.CheckWatchingHandler)
		watchlist.POST("", watchlistHandler.AddWatchHandler)
		watchlist.DELETE("", watchlistHandler.RemoveWatchHandler)
	}

	questions := api.Group("/questions")
	{
		questions.GET("/ai-status", questionHandler.AIStatusHandler)
		questions.GET("/auction/:auctionId", questionHandler.ListForAuctionHandler)
		questions.GET("/user/:userId", questionHandler.ListForUserHandler)
		questions.POST("", questionHandler.AskQuestionHandler)
		questions.PUT("/:id/answer", questionHandler.AnswerQuestionHandler)
		questions.DELETE("/:id", questionHandler.DeleteQuestionHandler)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.CreateUserHandler)
		users.GET("/:id", userHandler.GetUserHandler)
	}

	router.NoRoute(func(c *gin.Context) {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path), "route not found")
	})

	return router
}

func readyHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			utils.JSONError(c, http.StatusServiceUnavailable, err, "store unavailable")
			utils.Warn("readiness check failed", map[string]any{"error": err.Error()})
			return
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ready"}, "")
	}
}
