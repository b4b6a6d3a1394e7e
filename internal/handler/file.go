package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/middleware"
	"github.com/filerunner/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload ingests one multipart file. This path authenticates by API key
// only; a Bearer token grants no upload rights.
func (h *FileHandler) Upload(c *gin.Context) {
	apiKey := middleware.ExtractAPIKey(c)
	if apiKey == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperrors.WrapError(apperrors.ErrBadRequest, err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, apperrors.WrapError(apperrors.ErrBadRequest, err))
		return
	}

	resp, err := h.files.Upload(c.Request.Context(), *apiKey, service.UploadInput{
		OriginalName: fileHeader.Filename,
		FolderPath:   c.PostForm("folder"),
		DeclaredMime: fileHeader.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Download streams a file's bytes. Access is public visibility or a
// matching API key; Bearer tokens are ignored so links stay shareable.
func (h *FileHandler) Download(c *gin.Context) {
	fileID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.files.Download(c.Request.Context(), fileID, middleware.ExtractAPIKey(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(result.OriginalName))
	c.Data(http.StatusOK, result.MimeType, result.Data)
}

// contentDisposition quotes the client-supplied file name so quotes or
// header characters in it cannot break out of the parameter.
func contentDisposition(name string) string {
	return mime.FormatMediaType("inline", map[string]string{"filename": name})
}

func (h *FileHandler) Delete(c *gin.Context) {
	fileID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	err := h.files.Delete(c.Request.Context(), middleware.CurrentUser(c), middleware.ExtractAPIKey(c), fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteFileResponse{Message: "File deleted"})
}

func (h *FileHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deleted, err := h.files.BulkDelete(c.Request.Context(), middleware.CurrentUser(c), middleware.ExtractAPIKey(c), req.FileIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkDeleteResponse{
		Message:      "Files deleted",
		DeletedCount: deleted,
	})
}

// DeleteFolderFiles purges a folder and everything in it.
func (h *FileHandler) DeleteFolderFiles(c *gin.Context) {
	var req dto.DeleteFolderFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deleted, err := h.files.DeleteFolderFiles(c.Request.Context(),
		middleware.CurrentUser(c), middleware.ExtractAPIKey(c), req.ProjectID, req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteFolderFilesResponse{
		Message:      "Folder deleted",
		DeletedCount: deleted,
	})
}
