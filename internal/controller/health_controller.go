package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, RDB: rdb}
}

// Health godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} object
// @Router /api/health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	redisStatus := "connected"
	if err := c.RDB.Ping(checkCtx).Err(); err != nil {
		redisStatus = "unavailable"
	}

	dbStatus := "connected"
	sqlDB, err := c.DB.DB()
	if err != nil || sqlDB.PingContext(checkCtx) != nil {
		dbStatus = "unavailable"
	}

	status := "healthy"
	if redisStatus != "connected" || dbStatus != "connected" {
		status = "degraded"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":   status,
		"redis":    redisStatus,
		"database": dbStatus,
	})
}
