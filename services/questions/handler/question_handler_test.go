package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"
	questions "auction-marketplace/internal/questionService"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRouter(t *testing.T) (*gin.Engine, *MockQuestionServiceInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := NewMockQuestionServiceInterface(ctrl)
	handler := NewQuestionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/questions/ai-status", handler.AIStatusHandler)
	router.GET("/api/questions/auction/:auctionId", handler.ListForAuctionHandler)
	router.GET("/api/questions/user/:userId", handler.ListForUserHandler)
	router.POST("/api/questions", handler.AskQuestionHandler)
	router.PUT("/api/questions/:id/answer", handler.AnswerQuestionHandler)
	router.DELETE("/api/questions/:id", handler.DeleteQuestionHandler)
	return router, mockService
}

func serve(t *testing.T, router *gin.Engine, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestAskQuestionHandler(t *testing.T) {
	t.Parallel()

	auctionID := primitive.NewObjectID().Hex()
	userID := primitive.NewObjectID().Hex()
	private := false

	answered := models.QuestionView{
		Question: models.Question{
			ID:           primitive.NewObjectID(),
			QuestionText: "Does it work?",
			AnswerText:   questions.FallbackAnswer,
		},
		IsAnswered: true,
	}

	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockQuestionServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "asked_by_user",
			body: fmt.Sprintf(`{"auction_id":%q,"question_user_id":%q,"question_text":"Does it work?"}`, auctionID, userID),
			mockSetup: func(m *MockQuestionServiceInterface) {
				m.EXPECT().Ask(gomock.Any(), questions.AskInput{AuctionID: auctionID, UserID: userID, Text: "Does it work?"}).Return(answered, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "question posted successfully",
		},
		{
			name: "private_guest_question",
			body: fmt.Sprintf(`{"auction_id":%q,"question_text":"Does it work?","is_public":false}`, auctionID),
			mockSetup: func(m *MockQuestionServiceInterface) {
				m.EXPECT().Ask(gomock.Any(), questions.AskInput{AuctionID: auctionID, Text: "Does it work?", IsPublic: &private}).Return(answered, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "question posted successfully",
		},
		{
			name:           "missing_text",
			body:           fmt.Sprintf(`{"auction_id":%q}`, auctionID),
			mockSetup:      func(m *MockQuestionServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "text_too_long",
			body: fmt.Sprintf(`{"auction_id":%q,"question_text":"..."}`, auctionID),
			mockSetup: func(m *MockQuestionServiceInterface) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(models.QuestionView{}, fmt.Errorf("service: %w - question_text exceeds 1000 characters", marketerrors.ErrInvalidInput))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid input",
		},
		{
			name: "auction_missing",
			body: fmt.Sprintf(`{"auction_id":%q,"question_text":"Hi?"}`, auctionID),
			mockSetup: func(m *MockQuestionServiceInterface) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(models.QuestionView{}, fmt.Errorf("service: %w", marketerrors.ErrAuctionNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newRouter(t)
			tc.mockSetup(mockService)

			status, resp := serve(t, router, http.MethodPost, "/api/questions", tc.body)
			require.Equal(t, tc.expectedStatus, status)
			require.Equal(t, tc.expectedMsg, resp["message"])
			if status == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, true, data["is_answered"])
				require.Equal(t, questions.FallbackAnswer, data["answer_text"])
			}
		})
	}
}

func TestAnswerQuestionHandler(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID().Hex()
	sellerID := primitive.NewObjectID().Hex()

	router, mockService := newRouter(t)
	mockService.EXPECT().Answer(gomock.Any(), questionID, "Yes", sellerID).
		Return(models.QuestionView{Question: models.Question{AnswerText: "Yes"}, IsAnswered: true}, nil)
	mockService.EXPECT().Answer(gomock.Any(), questionID, "Yes", "someone-else").
		Return(models.QuestionView{}, fmt.Errorf("service: %w", marketerrors.ErrNotSeller))

	path := "/api/questions/" + questionID + "/answer"
	status, resp := serve(t, router, http.MethodPut, path, fmt.Sprintf(`{"answer_text":"Yes","answer_user_id":%q}`, sellerID))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Yes", resp["data"].(map[string]any)["answer_text"])

	status, resp = serve(t, router, http.MethodPut, path, `{"answer_text":"Yes","answer_user_id":"someone-else"}`)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "only the seller can answer questions", resp["message"])

	status, _ = serve(t, router, http.MethodPut, path, `{"answer_user_id":"x"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestQuestionListHandlers(t *testing.T) {
	t.Parallel()

	auctionID := primitive.NewObjectID().Hex()
	userID := primitive.NewObjectID().Hex()
	page := []models.QuestionView{
		{Question: models.Question{QuestionText: "Second?"}},
		{Question: models.Question{QuestionText: "First?"}},
	}

	router, mockService := newRouter(t)
	mockService.EXPECT().ListForAuction(gomock.Any(), auctionID, "2", "4").Return(page, int64(9), nil)
	mockService.EXPECT().ListForAuction(gomock.Any(), auctionID, "", "-1").
		Return(nil, int64(0), fmt.Errorf("service: %w - offset must be a non-negative integer", marketerrors.ErrInvalidInput))
	mockService.EXPECT().ListForUser(gomock.Any(), userID).Return(page[:1], nil)

	status, resp := serve(t, router, http.MethodGet, "/api/questions/auction/"+auctionID+"?limit=2&offset=4", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(9), resp["total"])
	require.Equal(t, float64(2), resp["count"])

	status, _ = serve(t, router, http.MethodGet, "/api/questions/auction/"+auctionID+"?offset=-1", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, resp = serve(t, router, http.MethodGet, "/api/questions/user/"+userID, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), resp["count"])
}

func TestDeleteQuestionAndAIStatusHandlers(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID().Hex()

	router, mockService := newRouter(t)
	mockService.EXPECT().Delete(gomock.Any(), questionID).Return(nil)
	mockService.EXPECT().Delete(gomock.Any(), questionID).Return(fmt.Errorf("service: %w", marketerrors.ErrQuestionNotFound))
	mockService.EXPECT().AIStatus().Return(questions.AIStatus{Configured: true, Provider: "gemini"})

	status, _ := serve(t, router, http.MethodDelete, "/api/questions/"+questionID, "")
	require.Equal(t, http.StatusOK, status)
	status, resp := serve(t, router, http.MethodDelete, "/api/questions/"+questionID, "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "question not found", resp["message"])

	status, resp = serve(t, router, http.MethodGet, "/api/questions/ai-status", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"configured": true, "provider": "gemini"}, resp["data"])
}
