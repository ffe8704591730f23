package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/utroned1234/APPDEFER/database"
)

// ==================== СЛУЖЕБНЫЕ МАРШРУТЫ ====================

func HealthHandler(c *gin.Context) {
	dbStatus := "ok"
	if err := database.Pool.Ping(c.Request.Context()); err != nil {
		dbStatus = "down"
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   dbStatus,
		"database": dbStatus,
		"time":     time.Now().Unix(),
	})
}
