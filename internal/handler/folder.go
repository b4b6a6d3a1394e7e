package handler

import (
	"net/http"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/middleware"
	"github.com/filerunner/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folders *service.FolderService
}

func NewFolderHandler(folders *service.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

func (h *FolderHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.folders.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByProject serves GET /api/projects/:id/folders.
func (h *FolderHandler) ListByProject(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.folders.List(c.Request.Context(), user, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FolderHandler) UpdateVisibility(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	folderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFolderVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.folders.UpdateVisibility(c.Request.Context(), user, folderID, req.IsPublic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
