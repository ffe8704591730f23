package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
)

// DashboardHandler собирает сводку кошелька. Все суммы – свёртки по журналу,
// никаких счётчиков. Сводка кэшируется в Redis на DashboardCacheTTL.
func DashboardHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := c.GetString("userID")
		cacheKey := "dashboard:" + userID

		if database.Rdb != nil && cfg.DashboardCacheTTL > 0 {
			if cached, err := database.Rdb.Get(ctx, cacheKey).Bytes(); err == nil {
				var payload gin.H
				if json.Unmarshal(cached, &payload) == nil {
					c.JSON(http.StatusOK, payload)
					return
				}
			}
		}

		balance, err := models.Balance(ctx, userID)
		if err != nil {
			logging.Logger.Error("❌ Ошибка сводки кошелька", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}

		dailyProfit, err := models.SumByType(ctx, userID, models.LedgerDailyProfit, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		referralBonus, err := models.SumByType(ctx, userID, models.LedgerReferralBonus, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		adjustments, err := models.SumByType(ctx, userID, models.LedgerAdjustment, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		rouletteWins, err := models.SumByType(ctx, userID, models.LedgerRouletteWin, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		earnings, err := models.SumEarnings(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}

		activePurchases, err := models.CountActivePurchases(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		directReferrals, err := models.DirectReferralsCount(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		networkSize, err := models.NetworkCount(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}
		history, err := models.EarningsHistory(ctx, userID, 7)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
			return
		}

		payload := gin.H{
			"balance_bs": balance,
			"earnings": gin.H{
				"total_bs":          earnings,
				"daily_profit_bs":   dailyProfit,
				"referral_bonus_bs": referralBonus,
				"adjustments_bs":    adjustments,
				"roulette_wins_bs":  rouletteWins,
			},
			"active_purchases": activePurchases,
			"direct_referrals": directReferrals,
			"network_size":     networkSize,
			"earnings_history": history,
		}

		if database.Rdb != nil && cfg.DashboardCacheTTL > 0 {
			if data, err := json.Marshal(payload); err == nil {
				database.Rdb.Set(ctx, cacheKey, data, cfg.DashboardCacheTTL)
			}
		}

		c.JSON(http.StatusOK, payload)
	}
}

// WalletHistoryHandler – записи журнала, свежие первыми.
// Опциональный фильтр ?type= и лимит ?limit= (по умолчанию 50)
func WalletHistoryHandler(c *gin.Context) {
	userID := c.GetString("userID")
	entryType := c.Query("type")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	entries, err := models.ListEntries(c.Request.Context(), userID, entryType, limit)
	if err != nil {
		logging.Logger.Error("❌ Ошибка истории кошелька", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// BalanceHandler – текущий баланс (свёртка всего журнала)
func BalanceHandler(c *gin.Context) {
	userID := c.GetString("userID")
	balance, err := models.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance_bs": balance})
}
