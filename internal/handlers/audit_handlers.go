package handlers

import (
	"net/http"
	"strconv"

	"bartab_backend/internal/services"
	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler holds the audit service.
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(as services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// GetEntries lists audit log entries, newest first.
func (h *AuditHandler) GetEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	entries, totalCount, err := h.auditService.GetEntries(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetEntries: Error from auditService.GetEntries")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve audit log.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Data: entries, TotalCount: totalCount, Page: page, PageSize: pageSize})
}
