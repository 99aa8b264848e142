package repository

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) CreateQuestion(ctx context.Context, q models.Question) (models.Question, error) {
	ts := now()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	if q.QuestionDate.IsZero() {
		q.QuestionDate = ts
	}
	q.CreatedAt, q.UpdatedAt = ts, ts

	if _, err := s.questions.InsertOne(ctx, q); err != nil {
		return models.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *MongoStore) GetQuestion(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	if err := s.questions.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Question{}, fmt.Errorf("get question %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
		}
		return models.Question{}, fmt.Errorf("get question %s: %w", id.Hex(), err)
	}
	return q, nil
}

func (s *MongoStore) UpdateAnswer(ctx context.Context, id primitive.ObjectID, answer models.Answer) (models.Question, error) {
	var q models.Question
	err := s.questions.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "answer_text", Value: answer.Text},
			{Key: "answer_date", Value: answer.Date},
			{Key: "answer_user_id", Value: answer.UserID},
			{Key: "updatedAt", Value: now()},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Question{}, fmt.Errorf("update answer %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
		}
		return models.Question{}, fmt.Errorf("update answer %s: %w", id.Hex(), err)
	}
	return q, nil
}

func (s *MongoStore) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, int64, error) {
	filter := bson.D{}
	if f.AuctionID != nil {
		filter = append(filter, bson.E{Key: "auction_id", Value: *f.AuctionID})
	}
	if f.UserID != nil {
		filter = append(filter, bson.E{Key: "question_user_id", Value: *f.UserID})
	}
	if f.PublicOnly {
		filter = append(filter, bson.E{Key: "is_public", Value: true})
	}

	total, err := s.questions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "question_date", Value: -1}}).SetSkip(f.Offset)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := s.questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, 0, fmt.Errorf("decode questions: %w", err)
	}
	return questions, total, nil
}

func (s *MongoStore) DeleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.questions.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete question %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete question %s: %w", id.Hex(), marketerrors.ErrQuestionNotFound)
	}
	return nil
}
