package models

import (
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/marketerrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBioLength = 500

// User represents a buyer or seller
type User struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username                 string             `bson:"username" json:"username"`
	Email                    string             `bson:"email" json:"email"`
	RatingPositivePercentage float64            `bson:"rating_positive_percentage" json:"rating_positive_percentage"`
	TotalRatings             int64              `bson:"total_ratings" json:"total_ratings"`
	Location                 string             `bson:"location" json:"location"`
	MemberSince              time.Time          `bson:"member_since" json:"member_since"`
	AvatarURL                *string            `bson:"avatar_url" json:"avatar_url"`
	Verified                 bool               `bson:"verified" json:"verified"`
	Bio                      string             `bson:"bio" json:"bio"`
	TotalListings            int64              `bson:"total_listings" json:"total_listings"`
	TotalPurchases           int64              `bson:"total_purchases" json:"total_purchases"`
	CreatedAt                time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize trims identity fields and lowercases the email.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Location = strings.TrimSpace(u.Location)
}

// Validate enforces the user schema.
func (u User) Validate() error {
	switch {
	case u.Username == "":
		return fmt.Errorf("%w: username is required", marketerrors.ErrInvalidInput)
	case u.Email == "":
		return fmt.Errorf("%w: email is required", marketerrors.ErrInvalidInput)
	case u.Location == "":
		return fmt.Errorf("%w: location is required", marketerrors.ErrInvalidInput)
	case u.RatingPositivePercentage < 0 || u.RatingPositivePercentage > 100:
		return fmt.Errorf("%w: rating_positive_percentage must be within [0,100]", marketerrors.ErrInvalidInput)
	case u.TotalRatings < 0 || u.TotalListings < 0 || u.TotalPurchases < 0:
		return fmt.Errorf("%w: counters must be >= 0", marketerrors.ErrInvalidInput)
	case len([]rune(u.Bio)) > maxBioLength:
		return fmt.Errorf("%w: bio exceeds %d characters", marketerrors.ErrInvalidInput, maxBioLength)
	}
	return nil
}

// UserSummary is the public subset of a user shown next to bids and questions
type UserSummary struct {
	ID                       primitive.ObjectID `json:"id"`
	Username                 string             `json:"username"`
	RatingPositivePercentage float64            `json:"rating_positive_percentage"`
	AvatarURL                *string            `json:"avatar_url"`
}

func (u User) Summary() *UserSummary {
	return &UserSummary{
		ID:                       u.ID,
		Username:                 u.Username,
		RatingPositivePercentage: u.RatingPositivePercentage,
		AvatarURL:                u.AvatarURL,
	}
}
