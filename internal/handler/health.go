package handler

import (
	"net/http"

	"github.com/filerunner/backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewHealthHandler(db *gorm.DB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbStatus := "ok"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
		overall = "unavailable"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "disabled"
	if h.cache.IsEnabled() {
		cacheStatus = "ok"
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			// A cache outage degrades performance, not availability.
			cacheStatus = "down"
		}
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
