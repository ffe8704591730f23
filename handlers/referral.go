package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/services"
)

// ReferralNetworkHandler – сводка реферальной сети пользователя
func ReferralNetworkHandler(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("userID")

	user, err := models.GetUserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	direct, err := models.DirectReferralsCount(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral network"})
		return
	}
	total, err := models.NetworkCount(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral network"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_code":        user.UserCode,
		"direct_referrals": direct,
		"network_size":     total,
	})
}

// ReferralBonusHandler – расчёт потенциального бонуса по трём уровням.
// Только расчёт: запись в журнал делает админ отдельной операцией.
func ReferralBonusHandler(c *gin.Context) {
	userID := c.GetString("userID")

	breakdown, err := services.ComputeBonusBreakdown(c.Request.Context(), userID)
	if err != nil {
		logging.Logger.Error("❌ Ошибка расчёта реферального бонуса", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute referral bonus"})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// BonusRulesHandler – текущие проценты по уровням (публично для кабинета)
func BonusRulesHandler(c *gin.Context) {
	rules, err := models.GetBonusRules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bonus rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}
