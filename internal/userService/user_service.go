package users

import (
	"context"
	"fmt"
	"html"
	"strings"

	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService registers and looks up marketplace members
type UserService struct {
	repo   repository.UserRepository
	policy *bluemonday.Policy
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo, policy: bluemonday.StrictPolicy()}
}

// CreateUser validates and stores a new member. Ratings and counters always
// start at zero; username and email must be unused.
func (s *UserService) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NilObjectID
	u.RatingPositivePercentage = 0
	u.TotalRatings, u.TotalListings, u.TotalPurchases = 0, 0, 0
	u.Verified = false
	u.Bio = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(u.Bio)))

	u.Normalize()
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("service: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to create user %s: %w", u.Username, err)
	}
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (models.User, error) {
	oid, err := models.ParseID("user id", id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: %w", err)
	}

	u, err := s.repo.GetUser(ctx, oid)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", id, err)
	}
	return u, nil
}
