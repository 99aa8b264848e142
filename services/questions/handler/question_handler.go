//go:generate mockgen -source=question_handler.go -destination=mock_question_service.go -package=handler

package handler

import (
	"context"
	"net/http"

	"auction-marketplace/internal/models"
	questions "auction-marketplace/internal/questionService"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type QuestionServiceInterface interface {
	Ask(ctx context.Context, in questions.AskInput) (models.QuestionView, error)
	Answer(ctx context.Context, questionID, text, answererID string) (models.QuestionView, error)
	ListForAuction(ctx context.Context, auctionID, limit, offset string) ([]models.QuestionView, int64, error)
	ListForUser(ctx context.Context, userID string) ([]models.QuestionView, error)
	Delete(ctx context.Context, questionID string) error
	AIStatus() questions.AIStatus
}

type QuestionHandler struct {
	service QuestionServiceInterface
}

func NewQuestionHandler(service QuestionServiceInterface) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// ListForAuctionHandler handles GET /api/questions/auction/:auctionId?limit&offset
func (h *QuestionHandler) ListForAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	var page helpers.QuestionPageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		helpers.HandleBindError(c, "ListForAuctionHandler", err)
		return
	}

	items, total, err := h.service.ListForAuction(c.Request.Context(), auctionID, page.Limit, page.Offset)
	if err != nil {
		helpers.RespondError(c, "ListForAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "", gin.H{"count": len(items), "total": total})
}

// AskQuestionHandler handles POST /api/questions
func (h *QuestionHandler) AskQuestionHandler(c *gin.Context) {
	var req helpers.AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AskQuestionHandler", err)
		return
	}

	question, err := h.service.Ask(c.Request.Context(), questions.AskInput{
		AuctionID: req.AuctionID,
		UserID:    req.QuestionUserID,
		Text:      req.QuestionText,
		IsPublic:  req.IsPublic,
	})
	if err != nil {
		helpers.RespondError(c, "AskQuestionHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    req.QuestionUserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, question, "question posted successfully")
	helpers.LogSuccess("AskQuestionHandler", "question posted successfully", map[string]any{
		"question_id": question.ID.Hex(),
		"auction_id":  req.AuctionID,
		"answered":    question.IsAnswered,
	})
}

// AnswerQuestionHandler handles PUT /api/questions/:id/answer
func (h *QuestionHandler) AnswerQuestionHandler(c *gin.Context) {
	questionID := c.Param("id")
	var req helpers.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AnswerQuestionHandler", err)
		return
	}

	question, err := h.service.Answer(c.Request.Context(), questionID, req.AnswerText, req.AnswerUserID)
	if err != nil {
		helpers.RespondError(c, "AnswerQuestionHandler", err, map[string]any{
			"question_id": questionID,
			"user_id":     req.AnswerUserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, question, "answer posted successfully")
	helpers.LogSuccess("AnswerQuestionHandler", "answer posted successfully", map[string]any{"question_id": questionID})
}

// ListForUserHandler handles GET /api/questions/user/:userId
func (h *QuestionHandler) ListForUserHandler(c *gin.Context) {
	userID := c.Param("userId")
	items, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "ListForUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "", gin.H{"count": len(items)})
}

// DeleteQuestionHandler handles DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestionHandler(c *gin.Context) {
	questionID := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), questionID); err != nil {
		helpers.RespondError(c, "DeleteQuestionHandler", err, map[string]any{"question_id": questionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "question deleted successfully")
	helpers.LogSuccess("DeleteQuestionHandler", "question deleted successfully", map[string]any{"question_id": questionID})
}

// AIStatusHandler handles GET /api/questions/ai-status
func (h *QuestionHandler) AIStatusHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.service.AIStatus(), "")
}
