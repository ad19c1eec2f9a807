package project

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/procurement-api/internal/handler"
	"github.com/jwalitptl/procurement-api/internal/middleware"
	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/service/item"
	"github.com/jwalitptl/procurement-api/internal/service/project"
)

type Handler struct {
	svc   *project.Service
	items *item.Service
	auth  *middleware.AuthMiddleware
}

func NewHandler(svc *project.Service, items *item.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, items: items, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	staff := h.auth.RequireRole(model.RoleAdmin, model.RoleManager)

	projects := r.Group("/projects")
	{
		projects.POST("", staff, h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", staff, h.UpdateProject)
		projects.DELETE("/:id", staff, h.DeleteProject)
		projects.PUT("/:id/managers", staff, h.UpdateManagers)

		projects.POST("/:id/items", h.CreateItem)
		projects.GET("/:id/items", h.ListItems)
	}
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(project))
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	project, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(project))
}

func (h *Handler) ListProjects(c *gin.Context) {
	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	projects, err := h.svc.ListProjects(c.Request.Context(), p)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(projects))
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(project))
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateManagers(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateManagersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	project, err := h.svc.UpdateManagers(c.Request.Context(), id, middleware.UserID(c), req.ManagerIDs)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(project))
}

func (h *Handler) CreateItem(c *gin.Context) {
	projectID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), projectID, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler) ListItems(c *gin.Context) {
	projectID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var filters model.ItemFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	filters.ProjectID = projectID
	if filters.AssignedTo, ok = handler.ParseOptionalQueryID(c, "assigned_to"); !ok {
		return
	}

	items, err := h.items.ListItems(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}
