package controller

import (
	"errors"

	"learnpulse_backend/internal/model"
	"learnpulse_backend/internal/service"
	"learnpulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Assistant   *service.AssistantService
	Intent      *service.IntentService
	AuthService *service.AuthService
}

func NewChatController(assistant *service.AssistantService, intent *service.IntentService, authService *service.AuthService) *ChatController {
	return &ChatController{Assistant: assistant, Intent: intent, AuthService: authService}
}

// Chat godoc
// @Summary Conversational analytics turn
// @Description Runs one assistant turn: intent detection, entity binding, grounded LLM reply, session update. Unauthenticated requests run in demo mode.
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body model.ChatRequest true "Chat turn"
// @Success 200 {object} util.Response{data=model.ChatResponse}
// @Failure 400 {object} util.Response "Invalid payload"
// @Failure 502 {object} util.Response "Assistant unavailable"
// @Router /api/assistant/chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	var req model.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	requester := c.AuthService.GetCurrentUser(ctx)

	resp, err := c.Assistant.Chat(ctx.Request.Context(), req, requester)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssistantUnavailable):
			util.BadGateway(ctx, util.ErrAssistantUnavailable.Error())
		case errors.Is(err, util.ErrSessionSaveFailed):
			util.BadGateway(ctx, util.ErrSessionSaveFailed.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resp)
}

// Meta godoc
// @Summary Known students and class ids
// @Tags assistant
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/assistant/meta [get]
func (c *ChatController) Meta(ctx *gin.Context) {
	students, classes, err := c.Intent.Vocabularies()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"students": students, "class_ids": classes})
}
