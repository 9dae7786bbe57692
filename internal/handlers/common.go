package handlers

import (
	"net/http"

	"bartab_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaginatedResponse wraps list payloads with the total row count so clients
// can page without a separate count request.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

// staffIDFromContext reads the authenticated staff ID set by AuthMiddleware.
// When it is missing the request never passed authentication; respond 401 and
// report false.
func staffIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get("staffID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Staff not authenticated.", "Missing staff ID in session"))
		return 0, false
	}
	staffID, ok := value.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Invalid session state.", "Staff ID has unexpected type"))
		return 0, false
	}
	return staffID, true
}

// pathID parses a positive integer path parameter, responding 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" parameter.", name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
