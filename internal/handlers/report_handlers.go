package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bartab_backend/internal/services"
	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetRevenueReport returns per-business-day order revenue for a date range.
func (h *ReportHandler) GetRevenueReport(c *gin.Context) {
	report, err := h.reportService.GetRevenueReport(c.Query("from"), c.Query("to"))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report range.", err.Error()))
			return
		}
		utils.LogError(err, "GetRevenueReport: Error from reportService.GetRevenueReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build revenue report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetRaiseReport returns per-business-day top-up totals, split cash vs bank.
func (h *ReportHandler) GetRaiseReport(c *gin.Context) {
	report, err := h.reportService.GetRaiseReport(c.Query("from"), c.Query("to"))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report range.", err.Error()))
			return
		}
		utils.LogError(err, "GetRaiseReport: Error from reportService.GetRaiseReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build raise report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLowStockReport lists active products at or below a stock threshold.
func (h *ReportHandler) GetLowStockReport(c *gin.Context) {
	threshold := 0
	if thresholdStr := c.Query("threshold"); thresholdStr != "" {
		parsed, err := strconv.Atoi(thresholdStr)
		if err != nil || parsed < 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid threshold parameter.", "threshold must be a non-negative integer"))
			return
		}
		threshold = parsed
	}

	products, err := h.reportService.GetLowStockReport(threshold)
	if err != nil {
		utils.LogError(err, "GetLowStockReport: Error from reportService.GetLowStockReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build low stock report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetDebtors lists accounts with a negative balance.
func (h *ReportHandler) GetDebtors(c *gin.Context) {
	debtors, err := h.reportService.GetDebtors()
	if err != nil {
		utils.LogError(err, "GetDebtors: Error from reportService.GetDebtors")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build debtor report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, debtors)
}
