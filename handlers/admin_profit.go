package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/services"
	"github.com/utroned1234/APPDEFER/utils"
)

// AdminRunBulkProfitHandler – массовое начисление прибыли всем пользователям.
// Второй запуск в том же окне получает 423 с временем следующего окна.
func AdminRunBulkProfitHandler(distributor *services.Distributor, notifier *utils.TelegramNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := distributor.RunBulk(c.Request.Context(), time.Now())
		if err != nil {
			var locked *services.BulkLockedError
			if errors.As(err, &locked) {
				c.JSON(http.StatusLocked, gin.H{
					"error":       "bulk run already executed in this window",
					"last_run_at": locked.LastRunAt,
					"unlocks_at":  locked.UnlocksAt,
				})
				return
			}
			logging.Logger.Error("❌ Ошибка массового начисления", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run bulk profit distribution"})
			return
		}

		notifier.NotifyBulkRun(result.Credited, result.Skipped, result.Failed, result.TotalBs)

		c.JSON(http.StatusOK, gin.H{
			"message": "bulk profit distribution completed",
			"result":  result,
		})
	}
}

// AdminBulkProfitStatusHandler – время последнего запуска и следующего окна
func AdminBulkProfitStatusHandler(unlockHour int) gin.HandlerFunc {
	return func(c *gin.Context) {
		last, err := models.LastBulkRunAt(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bulk run status"})
			return
		}

		resp := gin.H{"last_run_at": nil, "can_run": true}
		if last != nil {
			resp["last_run_at"] = *last
			unlock := services.NextUnlock(*last, unlockHour)
			resp["next_window_at"] = unlock
			resp["can_run"] = !time.Now().Before(unlock)
		}
		c.JSON(http.StatusOK, resp)
	}
}
