package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bartab_backend/internal/services"
	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler holds the staff service.
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: ss}
}

// CreateStaff registers a new back-office account.
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req services.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.CreateStaff(req)
	if err != nil {
		utils.LogError(err, "CreateStaff: Error from staffService.CreateStaff")
		switch {
		case errors.Is(err, services.ErrStaffUsernameUsed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username already exists.", err.Error()))
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid staff data.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// GetStaffMembers lists back-office accounts.
func (h *StaffHandler) GetStaffMembers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	staffMembers, totalCount, err := h.staffService.GetStaffMembers(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetStaffMembers: Error from staffService.GetStaffMembers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve staff members.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Data: staffMembers, TotalCount: totalCount, Page: page, PageSize: pageSize})
}

// GetStaffByID returns one back-office account.
func (h *StaffHandler) GetStaffByID(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.staffService.GetStaffByID(staffID)
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetStaffByID: Error from staffService.GetStaffByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve staff member.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, staff)
}

// UpdateStaff applies partial updates to a back-office account.
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.UpdateStaff(staffID, req)
	if err != nil {
		utils.LogError(err, "UpdateStaff: Error from staffService.UpdateStaff")
		switch {
		case errors.Is(err, services.ErrStaffNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		case errors.Is(err, services.ErrStaffUsernameUsed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username already exists.", err.Error()))
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid staff data.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, staff)
}

// DeactivateStaff disables an account without deleting its history.
func (h *StaffHandler) DeactivateStaff(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.staffService.DeactivateStaff(staffID); err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
			return
		}
		utils.LogError(err, "DeactivateStaff: Error from staffService.DeactivateStaff")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to deactivate staff member.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member deactivated successfully"})
}
