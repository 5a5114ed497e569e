package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatisticsHandler struct {
	BaseHandler
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(statisticsService services.StatisticsService, logger utils.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler:       NewBaseHandler(logger),
		statisticsService: statisticsService,
	}
}

// GetLabStatistics returns the stored rollup for a lab
// @Summary Get lab statistics
// @Tags statistics
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} models.LabStatistics
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/statistics [get]
func (h *StatisticsHandler) GetLabStatistics(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	stats, err := h.statisticsService.GetLabStatistics(c.Request.Context(), labID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RefreshLabStatistics recomputes the rollup for a lab
// @Summary Refresh lab statistics
// @Tags statistics
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} models.LabStatistics
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/statistics/refresh [post]
func (h *StatisticsHandler) RefreshLabStatistics(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Refreshing lab statistics", "lab_id", labID)

	stats, err := h.statisticsService.RefreshLabStatistics(c.Request.Context(), labID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetDashboard returns platform-wide statistics for staff
// @Summary Get dashboard
// @Tags statistics
// @Produce json
// @Success 200 {object} services.DashboardResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.statisticsService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ExportLabReport streams an xlsx report for a lab
// @Summary Export lab report
// @Tags statistics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Lab ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /labs/{id}/report [get]
func (h *StatisticsHandler) ExportLabReport(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Exporting lab report", "lab_id", labID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	report, err := h.statisticsService.ExportLabReport(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("lab-%d-report.xlsx", labID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, report)
}
