package router

import "github.com/gin-gonic/gin"

func (r *Router) folderRoutes(api *gin.RouterGroup) {
	folders := api.Group("/folders")
	{
		// Purging accepts a user session or an API key, resolved by the
		// handler; OptionalAuth only decodes a token when one is present.
		folders.POST("/delete", r.authMw.OptionalAuth(), r.fileHandler.DeleteFolderFiles)

		protected := folders.Group("")
		protected.Use(r.authMw.RequireAuth())
		{
			protected.POST("", r.folderHandler.Create)
			protected.PATCH("/:id/visibility", r.folderHandler.UpdateVisibility)
		}
	}
}
