package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxQuestionLength bounds both question and answer text, in characters.
const MaxQuestionLength = 1000

// Question is a buyer question on an auction with an optional seller answer
type Question struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AuctionID      primitive.ObjectID  `bson:"auction_id" json:"auction_id"`
	QuestionUserID primitive.ObjectID  `bson:"question_user_id" json:"question_user_id"`
	QuestionText   string              `bson:"question_text" json:"question_text"`
	QuestionDate   time.Time           `bson:"question_date" json:"question_date"`
	AnswerText     string              `bson:"answer_text,omitempty" json:"answer_text"`
	AnswerDate     *time.Time          `bson:"answer_date,omitempty" json:"answer_date"`
	AnswerUserID   *primitive.ObjectID `bson:"answer_user_id,omitempty" json:"answer_user_id"`
	IsPublic       bool                `bson:"is_public" json:"is_public"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (q Question) IsAnswered() bool {
	return q.AnswerText != ""
}

// Answer is the set of fields written when a question gets answered
type Answer struct {
	Text   string
	Date   time.Time
	UserID *primitive.ObjectID
}

// QuestionView is a question enriched for API responses
type QuestionView struct {
	Question
	IsAnswered   bool            `json:"is_answered"`
	QuestionUser *UserSummary    `json:"question_user,omitempty"`
	AnswerUser   *UserSummary    `json:"answer_user,omitempty"`
	Auction      *AuctionSummary `json:"auction,omitempty"`
}
