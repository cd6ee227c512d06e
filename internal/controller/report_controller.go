package controller

import (
	"net/http"
	"time"

	"learnpulse_backend/internal/service"
	"learnpulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports     *service.ReportService
	AuthService *service.AuthService
}

func NewReportController(reports *service.ReportService, authService *service.AuthService) *ReportController {
	return &ReportController{Reports: reports, AuthService: authService}
}

// StudentReport godoc
// @Summary Printable HTML progress report for one learner
// @Tags reports
// @Produce html
// @Param name path string true "Learner name"
// @Success 200 {string} string "HTML report"
// @Router /api/reports/students/{name}/html [get]
func (c *ReportController) StudentReport(ctx *gin.Context) {
	name := ctx.Param("name")

	html, err := c.Reports.StudentReportHTML(name, time.Now().Format("2006-01-02 15:04"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// ClassReport godoc
// @Summary Printable HTML report for one class
// @Tags reports
// @Produce html
// @Param classId path string true "Class id"
// @Success 200 {string} string "HTML report"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/reports/classes/{classId}/html [get]
func (c *ReportController) ClassReport(ctx *gin.Context) {
	classID := ctx.Param("classId")

	requester := c.AuthService.GetCurrentUser(ctx)
	if !requester.CanAccessClass(classID) {
		util.Forbidden(ctx)
		return
	}

	html, err := c.Reports.ClassReportHTML(classID, time.Now().Format("2006-01-02 15:04"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
