package router

import (
	"github.com/filerunner/backend/config"
	"github.com/filerunner/backend/internal/handler"
	"github.com/filerunner/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	projectHandler *handler.ProjectHandler
	folderHandler  *handler.FolderHandler
	fileHandler    *handler.FileHandler
	healthHandler  *handler.HealthHandler

	authMw *middleware.AuthMiddleware
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	project *handler.ProjectHandler,
	folder *handler.FolderHandler,
	file *handler.FileHandler,
	health *handler.HealthHandler,
	authMw *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		projectHandler: project,
		folderHandler:  folder,
		fileHandler:    file,
		healthHandler:  health,
		authMw:         authMw,
		config:         cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(r.config.App.CORSOrigins))

	router.GET("/health", r.healthHandler.Check)

	api := router.Group("/api")
	{
		r.authRoutes(api)
		r.projectRoutes(api)
		r.folderRoutes(api)
		r.fileRoutes(api)
	}

	return router
}
