//go:generate mockgen -source=watchlist_handler.go -destination=mock_watchlist_service.go -package=handler

package handler

import (
	"context"
	"net/http"

	"auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type WatchlistServiceInterface interface {
	GetUserWatchlist(ctx context.Context, userID string) ([]models.WatchlistView, error)
	CountWatchers(ctx context.Context, auctionID string) (int64, error)
	IsWatching(ctx context.Context, userID, auctionID string) (bool, error)
	AddWatch(ctx context.Context, userID, auctionID string) (models.Watchlist, int64, error)
	RemoveWatch(ctx context.Context, userID, auctionID string) (int64, error)
}

type WatchlistHandler struct {
	service WatchlistServiceInterface
}

func NewWatchlistHandler(service WatchlistServiceInterface) *WatchlistHandler {
	return &WatchlistHandler{service: service}
}

// GetUserWatchlistHandler handles GET /api/watchlist/user/:userId
func (h *WatchlistHandler) GetUserWatchlistHandler(c *gin.Context) {
	userID := c.Param("userId")
	items, err := h.service.GetUserWatchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetUserWatchlistHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "", gin.H{"count": len(items)})
}

// CountWatchersHandler handles GET /api/watchlist/auction/:auctionId/count
func (h *WatchlistHandler) CountWatchersHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	count, err := h.service.CountWatchers(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "CountWatchersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"count": count}, "")
}

// CheckWatchingHandler handles GET /api/watchlist/check?user_id&auction_id
func (h *WatchlistHandler) CheckWatchingHandler(c *gin.Context) {
	var req helpers.WatchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		helpers.HandleBindError(c, "CheckWatchingHandler", err)
		return
	}

	watching, err := h.service.IsWatching(c.Request.Context(), req.UserID, req.AuctionID)
	if err != nil {
		helpers.RespondError(c, "CheckWatchingHandler", err, map[string]any{
			"user_id":    req.UserID,
			"auction_id": req.AuctionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"isWatching": watching}, "")
}

// AddWatchHandler handles POST /api/watchlist
func (h *WatchlistHandler) AddWatchHandler(c *gin.Context) {
	var req helpers.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddWatchHandler", err)
		return
	}

	item, watchers, err := h.service.AddWatch(c.Request.Context(), req.UserID, req.AuctionID)
	if err != nil {
		helpers.RespondError(c, "AddWatchHandler", err, map[string]any{
			"user_id":    req.UserID,
			"auction_id": req.AuctionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, item, "added to watchlist", gin.H{"watchersCount": watchers})
	helpers.LogSuccess("AddWatchHandler", "added to watchlist", map[string]any{
		"user_id":        req.UserID,
		"auction_id":     req.AuctionID,
		"watchers_count": watchers,
	})
}

// RemoveWatchHandler handles DELETE /api/watchlist with a JSON body
func (h *WatchlistHandler) RemoveWatchHandler(c *gin.Context) {
	var req helpers.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RemoveWatchHandler", err)
		return
	}

	watchers, err := h.service.RemoveWatch(c.Request.Context(), req.UserID, req.AuctionID)
	if err != nil {
		helpers.RespondError(c, "RemoveWatchHandler", err, map[string]any{
			"user_id":    req.UserID,
			"auction_id": req.AuctionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "removed from watchlist", gin.H{"watchersCount": watchers})
	helpers.LogSuccess("RemoveWatchHandler", "removed from watchlist", map[string]any{
		"user_id":        req.UserID,
		"auction_id":     req.AuctionID,
		"watchers_count": watchers,
	})
}
