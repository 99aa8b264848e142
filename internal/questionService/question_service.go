package questions

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	ai "auction-marketplace/internal/aiService"
	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/search"
	"auction-marketplace/utils"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GuestUsername = "guest"

	// FallbackAnswer is stored whenever no AI answer is available
	FallbackAnswer = "Thanks for your question! The seller has been notified and will respond soon."

	DefaultHistorySize = 5
	DefaultPageSize    = 10
)

// Repository is the storage the question service reads and writes
type Repository interface {
	repository.AuctionRepository
	repository.QuestionRepository
	repository.UserRepository
}

// AskInput is a buyer question as submitted. An empty UserID asks as the guest user.
type AskInput struct {
	AuctionID string
	UserID    string
	Text      string
	IsPublic  *bool
}

// AIStatus reports which responder answers new questions
type AIStatus struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider"`
}

type Options struct {
	HistorySize int
	Now         func() time.Time
}

type Option func(*Options)

// WithHistorySize sets how many earlier questions are handed to the responder
func WithHistorySize(n int) Option {
	return func(o *Options) {
		o.HistorySize = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// QuestionService stores buyer questions and their answers
type QuestionService struct {
	repo      Repository
	responder ai.Responder
	policy    *bluemonday.Policy
	options   Options
}

func NewQuestionService(repo Repository, responder ai.Responder, opts ...Option) *QuestionService {
	options := Options{
		HistorySize: DefaultHistorySize,
		Now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&options)
	}
	if responder == nil {
		responder = ai.Noop{}
	}

	return &QuestionService{
		repo:      repo,
		responder: responder,
		policy:    bluemonday.StrictPolicy(),
		options:   options,
	}
}

// plain strips markup, keeping the text itself unescaped
func (s *QuestionService) plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// cleanText strips markup and enforces the length bound
func (s *QuestionService) cleanText(field, text string) (string, error) {
	text = s.plain(text)
	switch {
	case text == "":
		return "", fmt.Errorf("service: %w - %s is required", marketerrors.ErrInvalidInput, field)
	case utf8.RuneCountInString(text) > models.MaxQuestionLength:
		return "", fmt.Errorf("service: %w - %s exceeds %d characters", marketerrors.ErrInvalidInput, field, models.MaxQuestionLength)
	}
	return text, nil
}

// Ask stores a question and answers it right away, with the AI responder when
// one is configured and the fallback text otherwise. A failing responder never
// fails the question.
func (s *QuestionService) Ask(ctx context.Context, in AskInput) (models.QuestionView, error) {
	auctionID, err := models.ParseID("auction_id", in.AuctionID)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: %w", err)
	}
	text, err := s.cleanText("question_text", in.Text)
	if err != nil {
		return models.QuestionView{}, err
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: failed to ask on auction %s: %w", in.AuctionID, err)
	}

	var askerID primitive.ObjectID
	if in.UserID != "" {
		if askerID, err = models.ParseID("question_user_id", in.UserID); err != nil {
			return models.QuestionView{}, fmt.Errorf("service: %w", err)
		}
	} else if askerID, err = s.guestID(ctx); err != nil {
		return models.QuestionView{}, err
	}

	history, err := s.history(ctx, auctionID)
	if err != nil {
		return models.QuestionView{}, err
	}

	question, err := s.repo.CreateQuestion(ctx, models.Question{
		AuctionID:      auctionID,
		QuestionUserID: askerID,
		QuestionText:   text,
		QuestionDate:   s.options.Now(),
		IsPublic:       lo.FromPtrOr(in.IsPublic, true),
	})
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: failed to store question on auction %s: %w", in.AuctionID, err)
	}

	answered, err := s.repo.UpdateAnswer(ctx, question.ID, models.Answer{
		Text:   s.draftAnswer(ctx, auction, text, history),
		Date:   s.options.Now(),
		UserID: auction.SellerID,
	})
	if err != nil {
		utils.Error("failed to store automatic answer", map[string]any{
			"question_id": question.ID.Hex(),
			"auction_id":  in.AuctionID,
			"error":       err.Error(),
		})
	} else {
		question = answered
	}

	views, err := s.views(ctx, []models.Question{question}, false)
	if err != nil {
		return models.QuestionView{}, err
	}
	return views[0], nil
}

// draftAnswer asks the responder for a seller answer, falling back on any failure
func (s *QuestionService) draftAnswer(ctx context.Context, auction models.Auction, question string, history []ai.QA) string {
	if !s.responder.IsConfigured() {
		return FallbackAnswer
	}

	sellerName := ""
	if auction.SellerID != nil {
		if seller, err := s.repo.GetUser(ctx, *auction.SellerID); err == nil {
			sellerName = seller.Username
		}
	}

	answer, err := s.responder.GenerateSellerResponse(ctx, ai.NewSnapshot(auction, sellerName), question, history)
	if err != nil {
		utils.Warn("AI responder failed, using fallback answer", map[string]any{
			"provider":   s.responder.Provider(),
			"auction_id": auction.ID.Hex(),
			"error":      err.Error(),
		})
		return FallbackAnswer
	}
	answer = s.plain(answer)
	if answer == "" {
		return FallbackAnswer
	}
	if utf8.RuneCountInString(answer) > models.MaxQuestionLength {
		answer = string([]rune(answer)[:models.MaxQuestionLength])
	}
	return answer
}

// history returns the most recent public exchanges on the auction, oldest first
func (s *QuestionService) history(ctx context.Context, auctionID primitive.ObjectID) ([]ai.QA, error) {
	if s.options.HistorySize <= 0 {
		return nil, nil
	}
	recent, _, err := s.repo.ListQuestions(ctx, repository.QuestionFilter{
		AuctionID:  &auctionID,
		PublicOnly: true,
		Limit:      int64(s.options.HistorySize),
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load earlier questions: %w", err)
	}

	qa := lo.Map(recent, func(q models.Question, _ int) ai.QA {
		return ai.QA{Question: q.QuestionText, Answer: q.AnswerText}
	})
	return lo.Reverse(qa), nil
}

// guestID finds or lazily creates the shared guest identity
func (s *QuestionService) guestID(ctx context.Context) (primitive.ObjectID, error) {
	guest, err := s.repo.FindUserByUsername(ctx, GuestUsername)
	if err == nil {
		return guest.ID, nil
	}
	if !errors.Is(err, marketerrors.ErrUserNotFound) {
		return primitive.NilObjectID, fmt.Errorf("service: failed to find guest user: %w", err)
	}

	guest, err = s.repo.CreateUser(ctx, models.User{
		Username: GuestUsername,
		Email:    "guest@example.com",
		Location: "Unknown",
	})
	if errors.Is(err, marketerrors.ErrUserExists) {
		// created concurrently by another request
		guest, err = s.repo.FindUserByUsername(ctx, GuestUsername)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("service: failed to create guest user: %w", err)
	}
	return guest.ID, nil
}

// Answer stores the seller's answer. Only the auction's seller may answer.
func (s *QuestionService) Answer(ctx context.Context, questionID, text, answererID string) (models.QuestionView, error) {
	qid, err := models.ParseID("question id", questionID)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: %w", err)
	}
	uid, err := models.ParseID("answer_user_id", answererID)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: %w", err)
	}
	if text, err = s.cleanText("answer_text", text); err != nil {
		return models.QuestionView{}, err
	}

	question, err := s.repo.GetQuestion(ctx, qid)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: failed to answer question %s: %w", questionID, err)
	}
	auction, err := s.repo.GetAuction(ctx, question.AuctionID)
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: failed to answer question %s: %w", questionID, err)
	}
	if auction.SellerID == nil || *auction.SellerID != uid {
		return models.QuestionView{}, fmt.Errorf("service: %w", marketerrors.ErrNotSeller)
	}

	answered, err := s.repo.UpdateAnswer(ctx, qid, models.Answer{Text: text, Date: s.options.Now(), UserID: &uid})
	if err != nil {
		return models.QuestionView{}, fmt.Errorf("service: failed to store answer for question %s: %w", questionID, err)
	}

	views, err := s.views(ctx, []models.Question{answered}, false)
	if err != nil {
		return models.QuestionView{}, err
	}
	return views[0], nil
}

// ListForAuction returns one page of the auction's public questions, newest
// first, and the total number of public questions.
func (s *QuestionService) ListForAuction(ctx context.Context, auctionID, limit, offset string) ([]models.QuestionView, int64, error) {
	id, err := models.ParseID("auction id", auctionID)
	if err != nil {
		return nil, 0, fmt.Errorf("service: %w", err)
	}
	n, err := search.ParseLimit(limit, DefaultPageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("service: %w", err)
	}
	skip, err := parseOffset(offset)
	if err != nil {
		return nil, 0, err
	}

	questions, total, err := s.repo.ListQuestions(ctx, repository.QuestionFilter{
		AuctionID:  &id,
		PublicOnly: true,
		Limit:      n,
		Offset:     skip,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service: failed to list questions for auction %s: %w", auctionID, err)
	}

	views, err := s.views(ctx, questions, false)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func parseOffset(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("service: %w - offset must be a non-negative integer", marketerrors.ErrInvalidInput)
	}
	return n, nil
}

// ListForUser returns every question a user asked, newest first, with the auctions
func (s *QuestionService) ListForUser(ctx context.Context, userID string) ([]models.QuestionView, error) {
	id, err := models.ParseID("user id", userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	questions, _, err := s.repo.ListQuestions(ctx, repository.QuestionFilter{UserID: &id})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list questions of user %s: %w", userID, err)
	}
	return s.views(ctx, questions, true)
}

func (s *QuestionService) Delete(ctx context.Context, questionID string) error {
	id, err := models.ParseID("question id", questionID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete question %s: %w", questionID, err)
	}
	return nil
}

func (s *QuestionService) AIStatus() AIStatus {
	return AIStatus{
		Configured: s.responder.IsConfigured(),
		Provider:   s.responder.Provider(),
	}
}

// views enriches questions with asker and answerer details, and optionally the auction
func (s *QuestionService) views(ctx context.Context, questions []models.Question, withAuction bool) ([]models.QuestionView, error) {
	if len(questions) == 0 {
		return []models.QuestionView{}, nil
	}

	userIDs := make([]primitive.ObjectID, 0, len(questions)*2)
	for _, q := range questions {
		userIDs = append(userIDs, q.QuestionUserID)
		if q.AnswerUserID != nil {
			userIDs = append(userIDs, *q.AnswerUserID)
		}
	}
	users, err := s.repo.GetUsers(ctx, lo.Uniq(userIDs))
	if err != nil {
		return nil, fmt.Errorf("service: failed to load question users: %w", err)
	}

	var auctions map[primitive.ObjectID]models.Auction
	if withAuction {
		ids := lo.Uniq(lo.Map(questions, func(q models.Question, _ int) primitive.ObjectID { return q.AuctionID }))
		found, err := s.repo.FindAuctions(ctx, search.Query{IDs: ids, Limit: int64(len(ids))})
		if err != nil {
			return nil, fmt.Errorf("service: failed to load question auctions: %w", err)
		}
		auctions = lo.KeyBy(found, func(a models.Auction) primitive.ObjectID { return a.ID })
	}

	return lo.Map(questions, func(q models.Question, _ int) models.QuestionView {
		view := models.QuestionView{Question: q, IsAnswered: q.IsAnswered()}
		if u, ok := users[q.QuestionUserID]; ok {
			view.QuestionUser = u.Summary()
		}
		if q.AnswerUserID != nil {
			if u, ok := users[*q.AnswerUserID]; ok {
				view.AnswerUser = u.Summary()
			}
		}
		if a, ok := auctions[q.AuctionID]; ok {
			view.Auction = a.Summary()
		}
		return view
	}), nil
}
