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
)

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	ts := now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.MemberSince.IsZero() {
		u.MemberSince = ts
	}
	u.CreatedAt, u.UpdatedAt = ts, ts

	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, fmt.Errorf("create user %s: %w", u.Username, marketerrors.ErrUserExists)
		}
		return models.User{}, fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return u, nil
}

func (s *MongoStore) findOneUser(ctx context.Context, op string, filter bson.D) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, fmt.Errorf("%s: %w", op, marketerrors.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOneUser(ctx, "get user "+id.Hex(), bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOneUser(ctx, fmt.Sprintf("find user %q", username), bson.D{{Key: "username", Value: username}})
}

func (s *MongoStore) GetUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
