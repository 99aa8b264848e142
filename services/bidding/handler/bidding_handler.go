//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_service.go -package=handler

package handler

import (
	"context"
	"errors"
	"net/http"

	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, in bidding.PlaceBidInput) (models.BidView, error)
	GetBidsForAuction(ctx context.Context, auctionID string) ([]models.BidView, error)
	GetHighestBid(ctx context.Context, auctionID string) (models.BidView, error)
	GetBidsByUser(ctx context.Context, userID string) ([]models.BidView, error)
	GetUserBidsForAuction(ctx context.Context, userID, auctionID string) ([]models.BidView, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /api/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), bidding.PlaceBidInput{
		AuctionID:      req.AuctionID,
		BidderID:       req.BidderID,
		Amount:         req.Amount,
		IsAutoBid:      req.IsAutoBid,
		MaxAutoBid:     req.MaxAutoBid,
		ShippingMethod: req.SelectedShippingMethod,
	})
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, bid, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.ID.Hex(),
		"auction_id": req.AuctionID,
		"bidder_id":  req.BidderID,
		"amount":     bid.Amount,
	})
}

// GetBidsForAuctionHandler handles GET /api/bids/auction/:auctionId
func (h *BiddingHandler) GetBidsForAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetBidsForAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "", gin.H{"count": len(bids)})
	helpers.LogSuccess("GetBidsForAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetHighestBidHandler handles GET /api/bids/auction/:auctionId/highest
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	bid, err := h.service.GetHighestBid(c.Request.Context(), auctionID)
	if errors.Is(err, marketerrors.ErrNoBids) {
		utils.JSONResponse(c, http.StatusOK, nil, "No bids yet")
		return
	}
	if err != nil {
		helpers.RespondError(c, "GetHighestBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bid, "")
}

// GetBidsByUserHandler handles GET /api/bids/user/:userId
func (h *BiddingHandler) GetBidsByUserHandler(c *gin.Context) {
	userID := c.Param("userId")
	bids, err := h.service.GetBidsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetBidsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "", gin.H{"count": len(bids)})
	helpers.LogSuccess("GetBidsByUserHandler", "bids retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(bids),
	})
}

// GetUserBidsForAuctionHandler handles GET /api/bids/user/:userId/auction/:auctionId
func (h *BiddingHandler) GetUserBidsForAuctionHandler(c *gin.Context) {
	userID, auctionID := c.Param("userId"), c.Param("auctionId")
	bids, err := h.service.GetUserBidsForAuction(c.Request.Context(), userID, auctionID)
	if err != nil {
		helpers.RespondError(c, "GetUserBidsForAuctionHandler", err, map[string]any{
			"user_id":    userID,
			"auction_id": auctionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "", gin.H{"count": len(bids)})
}
