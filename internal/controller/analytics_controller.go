package controller

import (
	"net/http"
	"strconv"
	"strings"

	"learnpulse_backend/internal/model"
	"learnpulse_backend/internal/repository"
	"learnpulse_backend/internal/service"
	"learnpulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Analytics   *service.AnalyticsService
	Intent      *service.IntentService
	Cache       *repository.CacheRepository
	AuthService *service.AuthService
}

func NewAnalyticsController(analytics *service.AnalyticsService, intent *service.IntentService, cache *repository.CacheRepository, authService *service.AuthService) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, Intent: intent, Cache: cache, AuthService: authService}
}

func weeksParam(ctx *gin.Context) int {
	weeks, err := strconv.Atoi(ctx.DefaultQuery("weeks", "0"))
	if err != nil || weeks < 0 {
		return 0
	}
	return weeks
}

// StudentSummary godoc
// @Summary Aggregated stats for one learner
// @Description Unknown names return 404 with fuzzy "did you mean" suggestions.
// @Tags analytics
// @Produce json
// @Param name path string true "Learner name"
// @Param weeks query int false "Restrict to the last N weeks"
// @Success 200 {object} util.Response{data=model.StudentStats}
// @Failure 404 {object} util.Response "Learner not found"
// @Router /api/students/{name}/summary [get]
func (c *AnalyticsController) StudentSummary(ctx *gin.Context) {
	name := ctx.Param("name")
	weeks := weeksParam(ctx)

	cacheKey := "student_summary:" + strings.ToLower(name) + ":" + strconv.Itoa(weeks)
	var cached model.StudentStats
	if c.Cache.Get(ctx.Request.Context(), cacheKey, &cached) {
		util.Success(ctx, cached)
		return
	}

	stats, err := c.Analytics.StudentStats(name, weeks)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !stats.Exists {
		suggestions, _ := c.Intent.Suggest(name, 3)
		ctx.JSON(http.StatusNotFound, util.Response{
			Code:    http.StatusNotFound,
			Message: "Learner not found",
			Data:    gin.H{"suggestions": suggestions},
		})
		return
	}

	c.Cache.Set(ctx.Request.Context(), cacheKey, stats)
	util.Success(ctx, stats)
}

// StudentFeedback godoc
// @Summary Rule-based coaching advice for one learner
// @Tags analytics
// @Produce json
// @Param name path string true "Learner name"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "Learner not found"
// @Router /api/students/{name}/feedback [get]
func (c *AnalyticsController) StudentFeedback(ctx *gin.Context) {
	name := ctx.Param("name")

	stats, err := c.Analytics.StudentStats(name, 0)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !stats.Exists {
		suggestions, _ := c.Intent.Suggest(name, 3)
		ctx.JSON(http.StatusNotFound, util.Response{
			Code:    http.StatusNotFound,
			Message: "Learner not found",
			Data:    gin.H{"suggestions": suggestions},
		})
		return
	}

	feedback, err := c.Analytics.IndividualizedFeedback(name)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"student": stats.Student, "feedback": feedback})
}

// ClassSummary godoc
// @Summary Aggregated stats for one class
// @Description Instructors may only view classes assigned to them; admins and demo sessions see everything.
// @Tags analytics
// @Produce json
// @Param classId path string true "Class id"
// @Param weeks query int false "Restrict to the last N weeks"
// @Success 200 {object} util.Response{data=model.ClassStats}
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{classId}/summary [get]
func (c *AnalyticsController) ClassSummary(ctx *gin.Context) {
	classID := ctx.Param("classId")
	weeks := weeksParam(ctx)

	requester := c.AuthService.GetCurrentUser(ctx)
	if !requester.CanAccessClass(classID) {
		util.Forbidden(ctx)
		return
	}

	cacheKey := "class_summary:" + strings.ToLower(classID) + ":" + strconv.Itoa(weeks)
	var cached model.ClassStats
	if c.Cache.Get(ctx.Request.Context(), cacheKey, &cached) {
		util.Success(ctx, cached)
		return
	}

	stats, err := c.Analytics.ClassStats(classID, weeks)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !stats.Exists {
		util.NotFound(ctx)
		return
	}

	c.Cache.Set(ctx.Request.Context(), cacheKey, stats)
	util.Success(ctx, stats)
}
