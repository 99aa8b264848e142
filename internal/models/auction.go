package models

import (
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/marketerrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Condition of the listed item
type Condition string

const (
	ConditionNew         Condition = "New"
	ConditionUsed        Condition = "Used"
	ConditionLikeNew     Condition = "Like New"
	ConditionRefurbished Condition = "Refurbished"
	ConditionUnknown     Condition = "Unknown"
)

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionDraft  AuctionStatus = "draft"
	AuctionActive AuctionStatus = "active"
	AuctionEnded  AuctionStatus = "ended"
	AuctionSold   AuctionStatus = "sold"
	AuctionUnsold AuctionStatus = "unsold"
)

// ShippingOption is one delivery method offered by the seller
type ShippingOption struct {
	Method   string  `bson:"method" json:"method" binding:"required"`
	Location string  `bson:"location,omitempty" json:"location,omitempty"`
	Price    float64 `bson:"price" json:"price" binding:"gte=0"`
}

// Auction represents a listing together with its cached bidding aggregates.
//
// CurrentBid, BidCount, ReserveMet and WatchersCount are derived from the bid and
// watchlist collections and only change through the repository operations that
// write those collections. BidSeq is bumped on every accepted bid and guards
// concurrent acceptance.
type Auction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Location    string             `bson:"location" json:"location"`
	Colour      string             `bson:"colour" json:"colour"`

	StartPrice      float64          `bson:"start_price" json:"start_price"`
	ReservePrice    float64          `bson:"reserve_price" json:"reserve_price"`
	BuyNowPrice     float64          `bson:"buy_now_price,omitempty" json:"buy_now_price,omitempty"`
	ShippingOptions []ShippingOption `bson:"shipping_options,omitempty" json:"shipping_options"`
	PaymentMethods  []string         `bson:"payment_methods,omitempty" json:"payment_methods"`
	Images          []string         `bson:"images,omitempty" json:"images"`

	StartDate time.Time           `bson:"start_date" json:"start_date"`
	EndDate   *time.Time          `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Condition Condition           `bson:"condition" json:"condition"`
	Status    AuctionStatus       `bson:"status" json:"status"`
	SellerID  *primitive.ObjectID `bson:"seller_id,omitempty" json:"seller_id,omitempty"`

	CurrentBid    float64 `bson:"current_bid" json:"current_bid"`
	BidCount      int64   `bson:"bid_count" json:"bid_count"`
	ReserveMet    bool    `bson:"reserve_met" json:"reserve_met"`
	WatchersCount int64   `bson:"watchers_count" json:"watchers_count"`
	ViewCount     int64   `bson:"view_count" json:"view_count"`
	BidSeq        int64   `bson:"bid_seq" json:"-"`

	// Score is only set by best-match searches.
	Score *int `bson:"score,omitempty" json:"score,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// legacy document shapes, folded into Images/EndDate by Normalize
	LegacyImage       string     `bson:"image,omitempty" json:"-"`
	LegacyClosingTime *time.Time `bson:"closing_time,omitempty" json:"-"`
}

// Normalize folds legacy fields into the canonical shape and fills defaults.
// Stores call it on every document they read and before every insert.
func (a *Auction) Normalize() {
	if len(a.Images) == 0 && a.LegacyImage != "" {
		a.Images = []string{a.LegacyImage}
	}
	if a.EndDate == nil && a.LegacyClosingTime != nil {
		end := *a.LegacyClosingTime
		a.EndDate = &end
	}
	a.LegacyImage = ""
	a.LegacyClosingTime = nil

	if a.Images == nil {
		a.Images = []string{}
	}
	if a.ShippingOptions == nil {
		a.ShippingOptions = []ShippingOption{}
	}
	if a.PaymentMethods == nil {
		a.PaymentMethods = []string{}
	}
	if a.Condition == "" {
		a.Condition = ConditionUnknown
	}
	if a.Status == "" {
		a.Status = AuctionActive
	}
}

// Validate enforces the listing schema.
func (a Auction) Validate() error {
	required := map[string]string{
		"title":       a.Title,
		"description": a.Description,
		"category":    a.Category,
		"location":    a.Location,
		"colour":      a.Colour,
	}
	for _, field := range []string{"title", "description", "category", "location", "colour"} {
		if strings.TrimSpace(required[field]) == "" {
			return fmt.Errorf("%w: %s is required", marketerrors.ErrInvalidInput, field)
		}
	}
	if a.StartPrice < 0 {
		return fmt.Errorf("%w: start_price must be >= 0", marketerrors.ErrInvalidInput)
	}
	if a.ReservePrice < 0 {
		return fmt.Errorf("%w: reserve_price must be >= 0", marketerrors.ErrInvalidInput)
	}
	if a.BuyNowPrice < 0 {
		return fmt.Errorf("%w: buy_now_price must be >= 0", marketerrors.ErrInvalidInput)
	}
	for _, opt := range a.ShippingOptions {
		if strings.TrimSpace(opt.Method) == "" {
			return fmt.Errorf("%w: shipping option method is required", marketerrors.ErrInvalidInput)
		}
		if opt.Price < 0 {
			return fmt.Errorf("%w: shipping option price must be >= 0", marketerrors.ErrInvalidInput)
		}
	}
	switch a.Condition {
	case ConditionNew, ConditionUsed, ConditionLikeNew, ConditionRefurbished, ConditionUnknown:
	default:
		return fmt.Errorf("%w: unknown condition %q", marketerrors.ErrInvalidInput, a.Condition)
	}
	switch a.Status {
	case AuctionDraft, AuctionActive, AuctionEnded, AuctionSold, AuctionUnsold:
	default:
		return fmt.Errorf("%w: unknown status %q", marketerrors.ErrInvalidInput, a.Status)
	}
	if a.EndDate != nil && !a.StartDate.IsZero() && a.EndDate.Before(a.StartDate) {
		return fmt.Errorf("%w: end_date is before start_date", marketerrors.ErrInvalidInput)
	}
	return nil
}

// HasShippingMethod reports whether method is one of the auction's shipping options.
func (a Auction) HasShippingMethod(method string) bool {
	for _, opt := range a.ShippingOptions {
		if strings.EqualFold(opt.Method, method) {
			return true
		}
	}
	return false
}

// AuctionSummary is the subset of an auction embedded in bid and question listings
type AuctionSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	Images  []string           `json:"images"`
	Status  AuctionStatus      `json:"status"`
	EndDate *time.Time         `json:"end_date,omitempty"`
}

func (a Auction) Summary() *AuctionSummary {
	return &AuctionSummary{
		ID:      a.ID,
		Title:   a.Title,
		Images:  a.Images,
		Status:  a.Status,
		EndDate: a.EndDate,
	}
}
