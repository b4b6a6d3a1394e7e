package router

import "github.com/gin-gonic/gin"

func (r *Router) projectRoutes(api *gin.RouterGroup) {
	projects := api.Group("/projects")
	projects.Use(r.authMw.RequireAuth())
	{
		projects.POST("", r.projectHandler.Create)
		projects.GET("", r.projectHandler.List)
		projects.GET("/:id", r.projectHandler.Get)
		projects.PUT("/:id", r.projectHandler.Update)
		projects.DELETE("/:id", r.projectHandler.Delete)
		projects.POST("/:id/rotate-key", r.projectHandler.RotateAPIKey)
		projects.GET("/:id/files", r.projectHandler.ListFiles)
		projects.GET("/:id/folders", r.folderHandler.ListByProject)
	}
}
