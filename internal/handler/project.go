package handler

import (
	"net/http"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/middleware"
	"github.com/filerunner/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects *service.ProjectService
	files    *service.FileService
}

func NewProjectHandler(projects *service.ProjectService, files *service.FileService) *ProjectHandler {
	return &ProjectHandler{projects: projects, files: files}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.projects.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	resp, err := h.projects.List(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.projects.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.projects.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) RotateAPIKey(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.projects.RotateAPIKey(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteProjectResponse{Message: "Project deleted"})
}

// ListFiles returns metadata for every file in an owned project.
func (h *ProjectHandler) ListFiles(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.files.ListByProject(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
