//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

package handler

import (
	"context"
	"net/http"

	auctions "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/search"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	ListAuctions(ctx context.Context, p search.Params) (auctions.Listing, error)
	SearchAuctions(ctx context.Context, p search.Params) ([]models.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (models.Auction, error)
	FindSimilar(ctx context.Context, auctionID, limit string) (models.Auction, []models.Auction, error)
	CreateAuction(ctx context.Context, a models.Auction) (models.Auction, error)
	DeleteAuction(ctx context.Context, auctionID string) error
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListAuctionsHandler handles GET /api/auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	var params search.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		helpers.HandleBindError(c, "ListAuctionsHandler", err)
		return
	}

	listing, err := h.service.ListAuctions(c.Request.Context(), params)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"query": c.Request.URL.RawQuery})
		return
	}

	meta := gin.H{"count": len(listing.Auctions)}
	if listing.SortMode == search.SortBestMatch {
		meta["sortMode"] = string(listing.SortMode)
	}
	utils.JSONResponse(c, http.StatusOK, listing.Auctions, "", meta)
	helpers.LogSuccess("ListAuctionsHandler", "auctions listed", map[string]any{
		"count":     len(listing.Auctions),
		"sort_mode": listing.SortMode,
	})
}

// SearchAuctionsHandler handles GET /api/auctions/search
func (h *AuctionHandler) SearchAuctionsHandler(c *gin.Context) {
	var params search.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		helpers.HandleBindError(c, "SearchAuctionsHandler", err)
		return
	}

	found, err := h.service.SearchAuctions(c.Request.Context(), params)
	if err != nil {
		helpers.RespondError(c, "SearchAuctionsHandler", err, map[string]any{"q": params.Q})
		return
	}

	utils.JSONResponse(c, http.StatusOK, found, "", gin.H{"count": len(found), "query": params.Q})
}

// GetAuctionHandler handles GET /api/auctions/:id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "")
}

// SimilarAuctionsHandler handles GET /api/auctions/:id/similar
func (h *AuctionHandler) SimilarAuctionsHandler(c *gin.Context) {
	auctionID := c.Param("id")
	original, similar, err := h.service.FindSimilar(c.Request.Context(), auctionID, c.Query("limit"))
	if err != nil {
		helpers.RespondError(c, "SimilarAuctionsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, similar, "", gin.H{
		"count":        len(similar),
		"originalItem": original.Title,
	})
}

// CreateAuctionHandler handles POST /api/auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	auction, err := req.ToAuction()
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, nil)
		return
	}

	created, err := h.service.CreateAuction(c.Request.Context(), auction)
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"title": req.Title})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, created, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": created.ID.Hex(),
		"title":      created.Title,
	})
}

// DeleteAuctionHandler handles DELETE /api/auctions/:id
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	if err := h.service.DeleteAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}
