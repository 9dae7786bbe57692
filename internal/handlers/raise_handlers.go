package handlers

import (
	"errors"
	"net/http"

	"bartab_backend/internal/models"
	"bartab_backend/internal/services"
	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RaiseHandler holds the raise service.
type RaiseHandler struct {
	raiseService services.RaiseService
}

// NewRaiseHandler creates a new RaiseHandler.
func NewRaiseHandler(rs services.RaiseService) *RaiseHandler {
	return &RaiseHandler{raiseService: rs}
}

// CreateRaise records a balance top-up and returns the new balance.
func (h *RaiseHandler) CreateRaise(c *gin.Context) {
	staffID, ok := staffIDFromContext(c)
	if !ok {
		return
	}

	var req services.CreateRaiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.StaffID = staffID

	resp, err := h.raiseService.CreateRaise(req)
	if err != nil {
		utils.LogError(err, "CreateRaise: Error from raiseService.CreateRaise")
		switch {
		case errors.Is(err, services.ErrRaiseUserNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
		case errors.Is(err, services.ErrZeroRaiseAmount), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid raise data.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create raise.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetRaiseByID returns a single top-up record.
func (h *RaiseHandler) GetRaiseByID(c *gin.Context) {
	raiseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	raise, err := h.raiseService.GetRaiseByID(raiseID)
	if err != nil {
		if errors.Is(err, services.ErrRaiseNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Raise not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetRaiseByID: Error from raiseService.GetRaiseByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve raise.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, raise)
}

// GetRaises lists top-ups with optional user and date filters.
func (h *RaiseHandler) GetRaises(c *gin.Context) {
	var filters models.RaiseFilters
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

	raises, totalCount, err := h.raiseService.GetRaises(filters)
	if err != nil {
		utils.LogError(err, "GetRaises: Error from raiseService.GetRaises")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve raises.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Data: raises, TotalCount: totalCount, Page: filters.Page, PageSize: filters.PageSize})
}
