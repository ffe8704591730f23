package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/services"
)

// RoulettePrizesHandler – таблица призов для отрисовки колеса
func RoulettePrizesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prizes": services.Prizes()})
}

// RouletteStatusHandler – доступные спины и история выигрышей
func RouletteStatusHandler(roulette *services.Roulette) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		eligibility, err := roulette.CheckEligibility(c.Request.Context(), userID)
		if err != nil {
			logging.Logger.Error("❌ Ошибка статуса рулетки", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roulette status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"min_investment_bs": roulette.MinInvestmentBs,
			"eligible":          eligibility.Eligible,
			"history":           eligibility.History,
			"total_winnings_bs": eligibility.TotalWinnings,
		})
	}
}

// RouletteSpinHandler – один спин на покупку. Клиент объявляет выпавший
// prize_index, сервер проверяет его по таблице призов. purchase_id
// опционален: без него берётся подходящая покупка с наибольшей инвестицией
func RouletteSpinHandler(roulette *services.Roulette) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		var req struct {
			PurchaseID string `json:"purchase_id"`
			PrizeIndex *int   `json:"prize_index" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "prize_index is required"})
			return
		}

		result, err := roulette.Spin(c.Request.Context(), userID, req.PurchaseID, *req.PrizeIndex)
		if err != nil {
			if errors.Is(err, services.ErrInvalidPrize) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize index"})
				return
			}
			if errors.Is(err, services.ErrBlockedPrize) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "prize is blocked"})
				return
			}
			if errors.Is(err, services.ErrNotEligible) {
				c.JSON(http.StatusForbidden, gin.H{"error": "no eligible purchase for roulette"})
				return
			}
			logging.Logger.Error("❌ Ошибка спина рулетки", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to spin roulette"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "roulette spun",
			"result":  result,
		})
	}
}
