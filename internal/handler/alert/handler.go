package alert

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/procurement-api/internal/handler"
	"github.com/jwalitptl/procurement-api/internal/middleware"
	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/service/alert"
)

type Handler struct {
	svc  *alert.Service
	auth *middleware.AuthMiddleware
	now  func() time.Time
}

func NewHandler(svc *alert.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.PATCH("/:id/read", h.MarkRead)
		alerts.POST("/check", h.auth.RequireRole(model.RoleAdmin), h.RunCheck)
	}
}

func (h *Handler) ListAlerts(c *gin.Context) {
	var filters model.AlertFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var ok bool
	if filters.ProjectID, ok = handler.ParseOptionalQueryID(c, "project_id"); !ok {
		return
	}
	if filters.ItemID, ok = handler.ParseOptionalQueryID(c, "item_id"); !ok {
		return
	}

	alerts, err := h.svc.List(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "is_read": true}))
}

// RunCheck runs the deadline check immediately
func (h *Handler) RunCheck(c *gin.Context) {
	result, err := h.svc.RunDeadlineCheck(c.Request.Context(), h.now())
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
