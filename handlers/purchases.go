package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/utils"
)

// PackagesHandler – активные тарифы (публично)
func PackagesHandler(c *gin.Context) {
	packages, err := models.GetActivePackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// CreatePurchaseHandler – заявка на пакет, уходит в PENDING до одобрения админом
func CreatePurchaseHandler(notifier *utils.TelegramNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		username := c.GetString("username")

		var req struct {
			PackageID int `json:"package_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		purchase, err := models.CreatePurchase(c.Request.Context(), userID, req.PackageID)
		if err != nil {
			if errors.Is(err, models.ErrPackageNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
				return
			}
			if errors.Is(err, models.ErrDuplicatePackage) {
				c.JSON(http.StatusConflict, gin.H{"error": "package already requested or active"})
				return
			}
			logging.Logger.Error("❌ Ошибка создания покупки", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create purchase"})
			return
		}

		notifier.NotifyPurchaseRequest(username, purchase.PackageName, purchase.InvestmentBs)

		c.JSON(http.StatusCreated, gin.H{
			"message":  "purchase request created, pending approval",
			"purchase": purchase,
		})
	}
}

// MyPurchasesHandler – все покупки пользователя с данными пакетов
func MyPurchasesHandler(c *gin.Context) {
	userID := c.GetString("userID")

	purchases, err := models.ListUserPurchases(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases, "count": len(purchases)})
}
