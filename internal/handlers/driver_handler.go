package handlers

import (
	"net/http"

	"swyft/internal/services"
	"swyft/internal/utils"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	userService services.UserService
}

func NewDriverHandler(userService services.UserService) *DriverHandler {
	return &DriverHandler{
		userService: userService,
	}
}

// ListDrivers returns the public summaries of all registered drivers.
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.userService.ListDrivers(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	c.JSON(http.StatusOK, drivers)
}
