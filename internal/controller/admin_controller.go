package controller

import (
	"learnpulse_backend/internal/repository"
	"learnpulse_backend/internal/service"
	"learnpulse_backend/internal/util"
	"learnpulse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Dataset *repository.DatasetRepository
	Intent  *service.IntentService
}

func NewAdminController(dataset *repository.DatasetRepository, intent *service.IntentService) *AdminController {
	return &AdminController{Dataset: dataset, Intent: intent}
}

// ReloadDataset godoc
// @Summary Reload the activity dataset from disk
// @Description Re-reads the CSV and refreshes the entity vocabularies. The only way vocabularies change at runtime.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 500 {object} util.Response "Reload failed"
// @Router /api/admin/dataset/reload [post]
func (c *AdminController) ReloadDataset(ctx *gin.Context) {
	if err := c.Dataset.Reload(); err != nil {
		logger.Log.Error("Dataset reload failed", zap.Error(err))
		util.LogInternalError(ctx, err)
		return
	}
	if err := c.Intent.RefreshVocabularies(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	students, classes, err := c.Intent.Vocabularies()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"students": len(students), "classes": len(classes)})
}
