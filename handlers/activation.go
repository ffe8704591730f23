package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/services"
)

// ActivationStatusHandler – можно ли активировать прибыль сейчас
func ActivationStatusHandler(gate services.GatePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		status, err := gate.Check(c.Request.Context(), database.Pool, userID, time.Now())
		if err != nil {
			logging.Logger.Error("❌ Ошибка проверки гейта", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check activation status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"policy": gate.Name(),
			"status": status,
		})
	}
}

// ActivateHandler – ручная активация ежедневной прибыли.
// Отказ гейта отдаётся как 423 Locked со статусом и временем разблокировки.
func ActivateHandler(distributor *services.Distributor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		result, err := distributor.DistributeForUser(c.Request.Context(), userID, time.Now())
		if err != nil {
			var denied *services.GateDeniedError
			if errors.As(err, &denied) {
				c.JSON(http.StatusLocked, gin.H{
					"error":  "activation not available",
					"status": denied.Status,
				})
				return
			}
			if errors.Is(err, services.ErrNoActivePurchases) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "no active purchases"})
				return
			}
			logging.Logger.Error("❌ Ошибка активации", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate daily profit"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "daily profit credited",
			"result":  result,
		})
	}
}
