package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/utils"
)

// AdminListPurchasesHandler – покупки по статусу (?status=PENDING по умолчанию)
func AdminListPurchasesHandler(c *gin.Context) {
	status := c.DefaultQuery("status", models.PurchasePending)
	if status != models.PurchasePending && status != models.PurchaseActive && status != models.PurchaseRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	purchases, err := models.ListPurchasesByStatus(c.Request.Context(), status, limit, (page-1)*limit)
	if err != nil {
		logging.Logger.Error("❌ Ошибка списка покупок", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"count":     len(purchases),
		"page":      page,
		"limit":     limit,
	})
}

// AdminApprovePurchaseHandler – PENDING -> ACTIVE. Одобрение проходит ровно
// один раз: повтор или гонка двух админов ловится по статусу.
func AdminApprovePurchaseHandler(notifier *utils.TelegramNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		purchaseID := c.Param("id")

		err := models.ApprovePurchase(c.Request.Context(), purchaseID)
		if err != nil {
			if errors.Is(err, models.ErrPurchaseNotPending) {
				c.JSON(http.StatusConflict, gin.H{"error": "purchase is not pending"})
				return
			}
			logging.Logger.Error("❌ Ошибка одобрения покупки", zap.String("purchase_id", purchaseID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve purchase"})
			return
		}

		logging.Logger.Info("✅ Покупка одобрена", zap.String("purchase_id", purchaseID))
		notifier.NotifyPurchaseApproved(purchaseID)

		c.JSON(http.StatusOK, gin.H{"message": "purchase approved"})
	}
}

// AdminRejectPurchaseHandler – PENDING -> REJECTED. Пользователь может
// сразу подать новую заявку на тот же пакет.
func AdminRejectPurchaseHandler(c *gin.Context) {
	purchaseID := c.Param("id")

	err := models.RejectPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		if errors.Is(err, models.ErrPurchaseNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "purchase is not pending"})
			return
		}
		logging.Logger.Error("❌ Ошибка отклонения покупки", zap.String("purchase_id", purchaseID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject purchase"})
		return
	}

	logging.Logger.Info("🛑 Покупка отклонена", zap.String("purchase_id", purchaseID))
	c.JSON(http.StatusOK, gin.H{"message": "purchase rejected"})
}
