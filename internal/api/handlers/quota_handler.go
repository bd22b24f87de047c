package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/services"
)

type QuotaHandler struct {
	mgr *services.SessionManager
}

func NewQuotaHandler(mgr *services.SessionManager) *QuotaHandler {
	return &QuotaHandler{mgr: mgr}
}

func (h *QuotaHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, err := h.mgr.GetQuota(c.Request.Context(), userID, planOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// User is the admin view of another user's quota. Plan comes from the
// query because admins inspect accounts they do not own.
func (h *QuotaHandler) User(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	plan := models.Plan(c.DefaultQuery("plan", string(models.PlanFree)))
	q, err := h.mgr.GetQuota(c.Request.Context(), c.Param("user_id"), plan)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
