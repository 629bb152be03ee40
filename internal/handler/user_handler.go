package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnverse/auth-api/internal/service"
	"github.com/learnverse/auth-api/pkg/response"
)

// UserHandler exposes the role management endpoints owned by the auth core.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// UpgradeTutor godoc
// @Summary Promote a user to tutor
// @Description Set the user's role to TUTOR; existing sessions pick up the new role on their next refresh
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/upgrade-tutor [post]
func (h *UserHandler) UpgradeTutor(c *gin.Context) {
	user, err := h.service.UpgradeToTutor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user)
}
