package handlers

import (
	"errors"
	"net/http"

	"bartab_backend/internal/models"
	"bartab_backend/internal/services"
	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PurchaseHandler holds the purchase service.
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(ps services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: ps}
}

// CreatePurchase records a restock delivery and bumps product stock.
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	staffID, ok := staffIDFromContext(c)
	if !ok {
		return
	}

	var req services.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.StaffID = staffID

	purchase, err := h.purchaseService.CreatePurchase(req)
	if err != nil {
		utils.LogError(err, "CreatePurchase: Error from purchaseService.CreatePurchase")
		switch {
		case errors.Is(err, services.ErrPurchaseProductNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid purchase data.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create purchase.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// GetPurchases lists restock records.
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	var filters models.PurchaseFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters.", err.Error()))
		return
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	purchases, totalCount, err := h.purchaseService.GetPurchases(filters)
	if err != nil {
		utils.LogError(err, "GetPurchases: Error from purchaseService.GetPurchases")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve purchases.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Data: purchases, TotalCount: totalCount, Page: filters.Page, PageSize: filters.PageSize})
}
