package helpers

import (
	"time"

	"auction-marketplace/internal/models"

	"github.com/samber/lo"
)

// Request DTOs
type PlaceBidRequest struct {
	AuctionID              string   `json:"auction_id" binding:"required"`
	BidderID               string   `json:"bidder_id" binding:"required"`
	Amount                 float64  `json:"amount" binding:"required,gt=0"`
	IsAutoBid              bool     `json:"is_auto_bid"`
	MaxAutoBid             *float64 `json:"max_auto_bid" binding:"omitempty,gt=0"`
	SelectedShippingMethod string   `json:"selected_shipping_method"`
}

type WatchRequest struct {
	UserID    string `json:"user_id" form:"user_id" binding:"required"`
	AuctionID string `json:"auction_id" form:"auction_id" binding:"required"`
}

type AskQuestionRequest struct {
	AuctionID      string `json:"auction_id" binding:"required"`
	QuestionUserID string `json:"question_user_id"`
	QuestionText   string `json:"question_text" binding:"required"`
	IsPublic       *bool  `json:"is_public"`
}

type AnswerRequest struct {
	AnswerText   string `json:"answer_text" binding:"required"`
	AnswerUserID string `json:"answer_user_id" binding:"required"`
}

type QuestionPageQuery struct {
	Limit  string `form:"limit"`
	Offset string `form:"offset"`
}

// CreateAuctionRequest is the POST /api/auctions body. Prices are pointers so an
// omitted price fails binding while an explicit 0 is accepted.
type CreateAuctionRequest struct {
	Title           string                  `json:"title" binding:"required"`
	Description     string                  `json:"description" binding:"required"`
	Category        string                  `json:"category" binding:"required"`
	Location        string                  `json:"location" binding:"required"`
	Colour          string                  `json:"colour" binding:"required"`
	StartPrice      *float64                `json:"start_price" binding:"required,gte=0"`
	ReservePrice    *float64                `json:"reserve_price" binding:"required,gte=0"`
	BuyNowPrice     float64                 `json:"buy_now_price" binding:"gte=0"`
	ShippingOptions []models.ShippingOption `json:"shipping_options" binding:"dive"`
	PaymentMethods  []string                `json:"payment_methods"`
	Images          []string                `json:"images"`
	StartDate       *time.Time              `json:"start_date"`
	EndDate         *time.Time              `json:"end_date"`
	Condition       models.Condition        `json:"condition"`
	Status          models.AuctionStatus    `json:"status"`
	SellerID        string                  `json:"seller_id"`
}

// ToAuction converts the request into a listing, parsing the optional seller id
func (r CreateAuctionRequest) ToAuction() (models.Auction, error) {
	a := models.Auction{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Location:        r.Location,
		Colour:          r.Colour,
		StartPrice:      lo.FromPtr(r.StartPrice),
		ReservePrice:    lo.FromPtr(r.ReservePrice),
		BuyNowPrice:     r.BuyNowPrice,
		ShippingOptions: r.ShippingOptions,
		PaymentMethods:  r.PaymentMethods,
		Images:          r.Images,
		EndDate:         r.EndDate,
		Condition:       r.Condition,
		Status:          r.Status,
	}
	if r.StartDate != nil {
		a.StartDate = *r.StartDate
	}
	if r.SellerID != "" {
		id, err := models.ParseID("seller_id", r.SellerID)
		if err != nil {
			return models.Auction{}, err
		}
		a.SellerID = &id
	}
	return a, nil
}

type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Location  string  `json:"location" binding:"required"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
	Bio       string  `json:"bio"`
}

func (r CreateUserRequest) ToUser() models.User {
	return models.User{
		Username:  r.Username,
		Email:     r.Email,
		Location:  r.Location,
		AvatarURL: r.AvatarURL,
		Bio:       r.Bio,
	}
}
