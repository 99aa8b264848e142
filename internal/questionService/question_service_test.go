package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	ai "auction-marketplace/internal/aiService"
	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	repo    *repository.MemoryRepo
	seller  models.User
	buyer   models.User
	auction models.Auction
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepo()

	seller, err := repo.CreateUser(ctx, models.User{Username: "kiwiseller", Email: "seller@example.com", Location: "Auckland"})
	require.NoError(t, err)
	buyer, err := repo.CreateUser(ctx, models.User{Username: "kiwibuyer", Email: "buyer@example.com", Location: "Nelson"})
	require.NoError(t, err)
	auction, err := repo.CreateAuction(ctx, models.Auction{
		Title:        "Vintage camera",
		Description:  "Working film camera",
		StartPrice:   100,
		ReservePrice: 200,
		SellerID:     &seller.ID,
	})
	require.NoError(t, err)

	return fixture{repo: repo, seller: seller, buyer: buyer, auction: auction}
}

func (f fixture) ask(t *testing.T, svc *QuestionService, text string) models.QuestionView {
	t.Helper()
	view, err := svc.Ask(context.Background(), AskInput{AuctionID: f.auction.ID.Hex(), UserID: f.buyer.ID.Hex(), Text: text})
	require.NoError(t, err)
	return view
}

func TestQuestionService_Ask_FallbackWithoutResponder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewQuestionService(f.repo, ai.Noop{})

	view := f.ask(t, svc, "  Does it <b>work</b>? It's old.  ")

	require.Equal(t, "Does it work? It's old.", view.QuestionText)
	require.True(t, view.IsPublic)
	require.True(t, view.IsAnswered)
	require.Equal(t, FallbackAnswer, view.AnswerText)
	require.NotNil(t, view.AnswerUserID)
	require.Equal(t, f.seller.ID, *view.AnswerUserID)
	require.Equal(t, "kiwibuyer", view.QuestionUser.Username)
	require.Equal(t, "kiwiseller", view.AnswerUser.Username)
}

func TestQuestionService_Ask_UsesResponderWithHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctrl := gomock.NewController(t)
	responder := ai.NewMockResponder(ctrl)

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	svc := NewQuestionService(f.repo, responder, WithHistorySize(2), WithClock(clock))

	responder.EXPECT().IsConfigured().Return(true).AnyTimes()
	gomock.InOrder(
		responder.EXPECT().GenerateSellerResponse(gomock.Any(), gomock.Any(), "Is it boxed?", []ai.QA{}).Return("Yes, original box.", nil),
		responder.EXPECT().GenerateSellerResponse(gomock.Any(), gomock.Any(), "Any scratches?", []ai.QA{
			{Question: "Is it boxed?", Answer: "Yes, original box."},
		}).Return("None at all.", nil),
		responder.EXPECT().GenerateSellerResponse(gomock.Any(), gomock.Any(), "Does it work?", []ai.QA{
			{Question: "Is it boxed?", Answer: "Yes, original box."},
			{Question: "Any scratches?", Answer: "None at all."},
		}).DoAndReturn(func(_ context.Context, snap ai.AuctionSnapshot, _ string, _ []ai.QA) (string, error) {
			require.Equal(t, "kiwiseller", snap.SellerName)
			require.True(t, snap.HasReserve)
			return "<i>Perfectly</i>", nil
		}),
		responder.EXPECT().GenerateSellerResponse(gomock.Any(), gomock.Any(), "Pickup?", []ai.QA{
			{Question: "Any scratches?", Answer: "None at all."},
			{Question: "Does it work?", Answer: "Perfectly"},
		}).Return("", nil),
	)

	require.Equal(t, "Yes, original box.", f.ask(t, svc, "Is it boxed?").AnswerText)
	require.Equal(t, "None at all.", f.ask(t, svc, "Any scratches?").AnswerText)
	require.Equal(t, "Perfectly", f.ask(t, svc, "Does it work?").AnswerText)
	require.Equal(t, FallbackAnswer, f.ask(t, svc, "Pickup?").AnswerText)
}

func TestQuestionService_Ask_ResponderFailureFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctrl := gomock.NewController(t)
	responder := ai.NewMockResponder(ctrl)
	responder.EXPECT().IsConfigured().Return(true)
	responder.EXPECT().Provider().Return(ai.ProviderGemini)
	responder.EXPECT().GenerateSellerResponse(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("gemini api error: quota exceeded"))

	svc := NewQuestionService(f.repo, responder)
	view := f.ask(t, svc, "Will you post to Nelson?")
	require.Equal(t, FallbackAnswer, view.AnswerText)
}

func TestQuestionService_Ask_Guest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewQuestionService(f.repo, nil)
	ctx := context.Background()

	private := false
	first, err := svc.Ask(ctx, AskInput{AuctionID: f.auction.ID.Hex(), Text: "First?", IsPublic: &private})
	require.NoError(t, err)
	second, err := svc.Ask(ctx, AskInput{AuctionID: f.auction.ID.Hex(), Text: "Second?"})
	require.NoError(t, err)

	require.Equal(t, first.QuestionUserID, second.QuestionUserID)
	require.Equal(t, GuestUsername, first.QuestionUser.Username)
	require.False(t, first.IsPublic)
	require.True(t, second.IsPublic)

	guest, err := f.repo.FindUserByUsername(ctx, GuestUsername)
	require.NoError(t, err)
	require.Equal(t, guest.ID, first.QuestionUserID)
}

func TestQuestionService_Ask_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewQuestionService(f.repo, nil)

	tests := []struct {
		name          string
		in            AskInput
		expectedError error
	}{
		{name: "empty_text", in: AskInput{AuctionID: f.auction.ID.Hex(), Text: "   "}, expectedError: marketerrors.ErrValidation},
		{name: "markup_only", in: AskInput{AuctionID: f.auction.ID.Hex(), Text: "<script>alert(1)</script>"}, expectedError: marketerrors.ErrValidation},
		{name: "too_long", in: AskInput{AuctionID: f.auction.ID.Hex(), Text: strings.Repeat("a", models.MaxQuestionLength+1)}, expectedError: marketerrors.ErrValidation},
		{name: "bad_auction_id", in: AskInput{AuctionID: "xyz", Text: "Hi?"}, expectedError: marketerrors.ErrInvalidID},
		{name: "bad_user_id", in: AskInput{AuctionID: f.auction.ID.Hex(), UserID: "me", Text: "Hi?"}, expectedError: marketerrors.ErrInvalidID},
		{name: "unknown_auction", in: AskInput{AuctionID: primitive.NewObjectID().Hex(), Text: "Hi?"}, expectedError: marketerrors.ErrAuctionNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Ask(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.expectedError)
		})
	}

	_, err := svc.Ask(context.Background(), AskInput{AuctionID: f.auction.ID.Hex(), Text: strings.Repeat("é", models.MaxQuestionLength)})
	require.NoError(t, err)
}

func TestQuestionService_Answer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewQuestionService(f.repo, nil)
	ctx := context.Background()
	q := f.ask(t, svc, "Does it work?")

	_, err := svc.Answer(ctx, q.ID.Hex(), "Yes", f.buyer.ID.Hex())
	require.ErrorIs(t, err, marketerrors.ErrNotSeller)
	require.ErrorIs(t, err, marketerrors.ErrAuthorization)

	_, err = svc.Answer(ctx, primitive.NewObjectID().Hex(), "Yes", f.seller.ID.Hex())
	require.ErrorIs(t, err, marketerrors.ErrQuestionNotFound)

	_, err = svc.Answer(ctx, q.ID.Hex(), "", f.seller.ID.Hex())
	require.ErrorIs(t, err, marketerrors.ErrValidation)

	answered, err := svc.Answer(ctx, q.ID.Hex(), "Yes, tested last week.", f.seller.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "Yes, tested last week.", answered.AnswerText)
	require.True(t, answered.IsAnswered)
	require.NotNil(t, answered.AnswerDate)
	require.Equal(t, "kiwiseller", answered.AnswerUser.Username)
}

func TestQuestionService_Answer_AuctionWithoutSeller(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	svc := NewQuestionService(f.repo, nil)

	orphan, err := f.repo.CreateAuction(ctx, models.Auction{Title: "Unowned lamp"})
	require.NoError(t, err)
	q, err := svc.Ask(ctx, AskInput{AuctionID: orphan.ID.Hex(), UserID: f.buyer.ID.Hex(), Text: "Colour?"})
	require.NoError(t, err)
	require.Nil(t, q.AnswerUserID)

	_, err = svc.Answer(ctx, q.ID.Hex(), "Red", f.seller.ID.Hex())
	require.ErrorIs(t, err, marketerrors.ErrNotSeller)
}

func TestQuestionService_Listings(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc := NewQuestionService(f.repo, nil, WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))

	for i := 1; i <= 4; i++ {
		f.ask(t, svc, fmt.Sprintf("Question %d?", i))
	}
	private := false
	_, err := svc.Ask(ctx, AskInput{AuctionID: f.auction.ID.Hex(), UserID: f.buyer.ID.Hex(), Text: "Private?", IsPublic: &private})
	require.NoError(t, err)

	page, total, err := svc.ListForAuction(ctx, f.auction.ID.Hex(), "2", "1")
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Equal(t, []string{"Question 3?", "Question 2?"}, lo.Map(page, func(q models.QuestionView, _ int) string { return q.QuestionText }))

	all, total, err := svc.ListForAuction(ctx, f.auction.ID.Hex(), "", "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, int64(4), total)

	beyond, _, err := svc.ListForAuction(ctx, f.auction.ID.Hex(), "", "10")
	require.NoError(t, err)
	require.Empty(t, beyond)

	_, _, err = svc.ListForAuction(ctx, f.auction.ID.Hex(), "", "-1")
	require.ErrorIs(t, err, marketerrors.ErrValidation)

	mine, err := svc.ListForUser(ctx, f.buyer.ID.Hex())
	require.NoError(t, err)
	require.Len(t, mine, 5)
	require.Equal(t, "Private?", mine[0].QuestionText)
	require.NotNil(t, mine[0].Auction)
	require.Equal(t, "Vintage camera", mine[0].Auction.Title)

	require.NoError(t, svc.Delete(ctx, mine[0].ID.Hex()))
	require.ErrorIs(t, svc.Delete(ctx, mine[0].ID.Hex()), marketerrors.ErrQuestionNotFound)
}

func TestQuestionService_AIStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, AIStatus{}, NewQuestionService(repository.NewMemoryRepo(), nil).AIStatus())

	ctrl := gomock.NewController(t)
	responder := ai.NewMockResponder(ctrl)
	responder.EXPECT().IsConfigured().Return(true)
	responder.EXPECT().Provider().Return(ai.ProviderOllama)
	require.Equal(t, AIStatus{Configured: true, Provider: "ollama"}, NewQuestionService(repository.NewMemoryRepo(), responder).AIStatus())
}
