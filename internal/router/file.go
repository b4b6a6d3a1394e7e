package router

import "github.com/gin-gonic/gin"

func (r *Router) fileRoutes(api *gin.RouterGroup) {
	// Upload and download authenticate by API key, never by session.
	api.POST("/upload", r.fileHandler.Upload)
	api.GET("/files/:id", r.fileHandler.Download)

	// Deletion reconciles an optional session with an optional API key.
	api.DELETE("/files/:id", r.authMw.OptionalAuth(), r.fileHandler.Delete)
	api.POST("/files/bulk-delete", r.authMw.OptionalAuth(), r.fileHandler.BulkDelete)
}
